package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forgecms-backend/shared/database/models"
	"forgecms-backend/shared/database/models/auth"
	"forgecms-backend/shared/database/models/content"
	"forgecms-backend/shared/utils/cache"
)

// DeleteOrganizationCascade removes an organization and everything scoped
// to it in a single transaction. Session cleanup runs before membership
// rows are deleted because it reads memberships to decide whether a
// session can be repointed at another organization.
func DeleteOrganizationCascade(ctx context.Context, db *gorm.DB, storage *StorageService, orgID uuid.UUID) error {
	// Collect object keys up front; the binaries are removed after commit
	var objectKeys []string
	if err := db.Model(&content.Asset{}).
		Where("organization_id = ?", orgID).
		Pluck("object_key", &objectKeys).Error; err != nil {
		return fmt.Errorf("failed to collect asset objects: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var memberships []models.Membership
		if err := tx.Where("organization_id = ?", orgID).Find(&memberships).Error; err != nil {
			return fmt.Errorf("failed to load members: %w", err)
		}

		// Repoint or delete the active sessions of every member first
		for _, membership := range memberships {
			if err := reassignUserSessions(tx, membership.UserID, orgID); err != nil {
				return err
			}
		}

		if err := tx.Where("organization_id = ?", orgID).Delete(&models.Membership{}).Error; err != nil {
			return fmt.Errorf("failed to remove members: %w", err)
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("failed to remove invitations: %w", err)
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&auth.ApiKey{}).Error; err != nil {
			return fmt.Errorf("failed to remove api keys: %w", err)
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&content.Document{}).Error; err != nil {
			return fmt.Errorf("failed to remove documents: %w", err)
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&content.Asset{}).Error; err != nil {
			return fmt.Errorf("failed to remove assets: %w", err)
		}

		if err := tx.Delete(&models.Organization{}, orgID).Error; err != nil {
			return fmt.Errorf("failed to delete organization: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.GetCacheManager().InvalidateOrganization(orgID)

	// Best effort: the rows are gone, orphaned binaries only waste space
	if storage != nil {
		for _, key := range objectKeys {
			if err := storage.Delete(ctx, key); err != nil {
				log.Printf("❌ Failed to delete object %s for removed organization %s: %v", key, orgID, err)
			}
		}
	}

	return nil
}

// RemoveMemberWithSessionCleanup deletes a membership and applies the same
// session reassignment as organization deletion to the affected user
func RemoveMemberWithSessionCleanup(db *gorm.DB, membership *models.Membership) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := reassignUserSessions(tx, membership.UserID, membership.OrganizationID); err != nil {
			return err
		}
		return tx.Delete(membership).Error
	})
}

// reassignUserSessions repoints every session of the user whose active
// organization is excludeOrgID to another organization the user belongs
// to, or deletes the sessions when none remains
func reassignUserSessions(tx *gorm.DB, userID, excludeOrgID uuid.UUID) error {
	var other models.Membership
	err := tx.Where("user_id = ? AND organization_id != ?", userID, excludeOrgID).
		Order("created_at ASC").
		First(&other).Error

	sessions := tx.Model(&auth.UserSession{}).
		Where("user_id = ? AND organization_id = ?", userID, excludeOrgID)

	if err == gorm.ErrRecordNotFound {
		// No other organization left: drop the sessions entirely
		return tx.Where("user_id = ? AND organization_id = ?", userID, excludeOrgID).
			Delete(&auth.UserSession{}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to look up remaining memberships: %w", err)
	}

	return sessions.Update("organization_id", other.OrganizationID).Error
}
