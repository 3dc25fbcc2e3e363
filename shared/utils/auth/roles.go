package utils

import "forgecms-backend/shared/database/models"

// RoleLevel maps a role to its position in the hierarchy
// (owner > admin > editor > viewer). Unknown roles rank below viewer.
func RoleLevel(role string) int {
	switch role {
	case models.RoleOwner:
		return 4
	case models.RoleAdmin:
		return 3
	case models.RoleEditor:
		return 2
	case models.RoleViewer:
		return 1
	default:
		return 0
	}
}

// IsValidRole reports whether role is one of the four organization roles
func IsValidRole(role string) bool {
	return RoleLevel(role) > 0
}

// CanWrite reports whether the role may mutate content. Every role except
// viewer can write.
func CanWrite(role string) bool {
	return RoleLevel(role) >= RoleLevel(models.RoleEditor)
}

// CanManageOrg reports whether the role may update organization settings
func CanManageOrg(role string) bool {
	return RoleLevel(role) >= RoleLevel(models.RoleAdmin)
}

// CanDeleteOrg reports whether the role may delete the organization
func CanDeleteOrg(role string) bool {
	return role == models.RoleOwner
}

// CanManageMembers reports whether the role may invite, remove or re-role
// members
func CanManageMembers(role string) bool {
	return RoleLevel(role) >= RoleLevel(models.RoleAdmin)
}

// CanModifyMember reports whether an actor may remove or change the role of
// a member with targetRole. Admins cannot touch owners.
func CanModifyMember(actorRole, targetRole string) bool {
	if !CanManageMembers(actorRole) {
		return false
	}
	return RoleLevel(actorRole) >= RoleLevel(targetRole)
}
