package handlers

import (
	"net/http"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/services"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	authutils "forgecms-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateMemberRoleRequest represents request body for changing a member's role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// GetMembers lists the members of the active organization
// @Summary List members
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of members"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/members [get]
func GetMembers(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	db := database.GetDB()

	var memberships []models.Membership
	if err := db.Preload("User").
		Where("organization_id = ?", principal.OrganizationID).
		Order("created_at ASC").Find(&memberships).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve members",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    memberships,
	})
}

// UpdateMemberRole changes a member's role in the active organization
// @Summary Update a member's role
// @Description Change a member's role. The caller must be admin or above and at or above the target's current role; only an owner can grant or revoke the owner role.
// @Tags members
// @Accept json
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Param body body UpdateMemberRoleRequest true "New role"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated membership"
// @Failure 400 {object} map[string]string "Invalid role or request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 409 {object} map[string]string "Would leave the organization without an owner"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/members/{userId} [patch]
func UpdateMemberRole(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	targetUserID, ok := parseUUIDParam(ctx, "userId", "user")
	if !ok {
		return
	}

	if targetUserID == principal.UserID {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "You cannot change your own role",
		})
		return
	}

	var req UpdateMemberRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if !authutils.IsValidRole(req.Role) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid role",
			"message": "Role must be one of: owner, admin, editor, viewer",
		})
		return
	}

	db := database.GetDB()

	var membership models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", targetUserID, principal.OrganizationID).
		First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Member not found",
				"message": "User is not a member of this organization",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve member",
			"message": err.Error(),
		})
		return
	}

	// Actors can only manage members at or below their own level, and only
	// an owner can hand out the owner role
	if !authutils.CanModifyMember(principal.OrganizationRole, membership.Role) ||
		authutils.RoleLevel(req.Role) > authutils.RoleLevel(principal.OrganizationRole) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "You cannot manage a member with this role",
		})
		return
	}

	if membership.Role == models.RoleOwner && req.Role != models.RoleOwner {
		if lastOwner, err := isLastOwner(db, &membership); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to check owners",
				"message": err.Error(),
			})
			return
		} else if lastOwner {
			ctx.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Cannot demote the last owner",
				"message": "Promote another member to owner first",
			})
			return
		}
	}

	if err := db.Model(&membership).Update("role", req.Role).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update member",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member role updated successfully",
		"data":    membership,
	})
}

// RemoveMember removes a member from the active organization
// @Summary Remove a member
// @Description Remove a member and repoint or delete their sessions tied to this organization. Admin or above, and only for members at or below the caller's role.
// @Tags members
// @Accept json
// @Produce json
// @Param userId path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid user ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 409 {object} map[string]string "Would leave the organization without an owner"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/members/{userId} [delete]
func RemoveMember(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	targetUserID, ok := parseUUIDParam(ctx, "userId", "user")
	if !ok {
		return
	}

	if targetUserID == principal.UserID {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "You cannot remove yourself from the organization",
		})
		return
	}

	db := database.GetDB()

	var membership models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", targetUserID, principal.OrganizationID).
		First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Member not found",
				"message": "User is not a member of this organization",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve member",
			"message": err.Error(),
		})
		return
	}

	if !authutils.CanModifyMember(principal.OrganizationRole, membership.Role) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "You cannot remove a member with this role",
		})
		return
	}

	if membership.Role == models.RoleOwner {
		if lastOwner, err := isLastOwner(db, &membership); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to check owners",
				"message": err.Error(),
			})
			return
		} else if lastOwner {
			ctx.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Cannot remove the last owner",
				"message": "Promote another member to owner first, or delete the organization",
			})
			return
		}
	}

	if err := services.RemoveMemberWithSessionCleanup(db, &membership); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to remove member",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member removed successfully",
	})
}

// isLastOwner reports whether the membership is the organization's only
// owner
func isLastOwner(db *gorm.DB, membership *models.Membership) (bool, error) {
	var owners int64
	err := db.Model(&models.Membership{}).
		Where("organization_id = ? AND role = ? AND user_id != ?",
			membership.OrganizationID, models.RoleOwner, membership.UserID).
		Count(&owners).Error
	if err != nil {
		return false, err
	}
	return owners == 0, nil
}
