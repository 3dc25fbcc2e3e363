package handlers

import (
	"net/http"
	"strings"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/services"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	"forgecms-backend/shared/database/models/auth"
	authutils "forgecms-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateOrganizationRequest represents request body for creating an organization
type CreateOrganizationRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Slug     string                 `json:"slug" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// UpdateOrganizationRequest represents request body for updating an organization
type UpdateOrganizationRequest struct {
	Name     *string                `json:"name"`
	Slug     *string                `json:"slug"`
	Metadata map[string]interface{} `json:"metadata"`
}

// SwitchOrganizationRequest selects the session's active organization
type SwitchOrganizationRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}

// organizationWithRole pairs an organization with the caller's role in it
type organizationWithRole struct {
	models.Organization
	Role string `json:"role"`
}

// GetOrganizations lists the organizations the caller belongs to
// @Summary List my organizations
// @Description List every organization the authenticated user is a member of, with the user's role in each
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of organizations"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations [get]
func GetOrganizations(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	db := database.GetDB()

	var memberships []models.Membership
	if err := db.Where("user_id = ?", principal.UserID).Find(&memberships).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve memberships",
			"message": err.Error(),
		})
		return
	}

	roleByOrg := make(map[uuid.UUID]string, len(memberships))
	orgIDs := make([]uuid.UUID, 0, len(memberships))
	for _, membership := range memberships {
		roleByOrg[membership.OrganizationID] = membership.Role
		orgIDs = append(orgIDs, membership.OrganizationID)
	}

	var organizations []models.Organization
	if len(orgIDs) > 0 {
		if err := db.Where("id IN ?", orgIDs).Order("name ASC").Find(&organizations).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to retrieve organizations",
				"message": err.Error(),
			})
			return
		}
	}

	responses := make([]organizationWithRole, 0, len(organizations))
	for _, org := range organizations {
		responses = append(responses, organizationWithRole{
			Organization: org,
			Role:         roleByOrg[org.ID],
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
	})
}

// CreateOrganization creates an organization with the caller as owner
// @Summary Create an organization
// @Description Create a new organization; the creator becomes its owner
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization name and slug"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created organization"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Slug already in use"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations [post]
func CreateOrganization(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	if principal.Type != middleware.PrincipalTypeSession {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "API keys cannot create organizations",
		})
		return
	}

	var req CreateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	db := database.GetDB()

	var existing models.Organization
	if err := db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Slug already in use",
			"message": "An organization with slug '" + slug + "' already exists",
		})
		return
	} else if err != gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to check slug",
			"message": err.Error(),
		})
		return
	}

	org := models.Organization{
		Name:     req.Name,
		Slug:     slug,
		Metadata: req.Metadata,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Create(&models.Membership{
			UserID:         principal.UserID,
			OrganizationID: org.ID,
			Role:           models.RoleOwner,
		}).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Organization created successfully",
		"data": organizationWithRole{
			Organization: org,
			Role:         models.RoleOwner,
		},
	})
}

// resolveOrgRole returns the caller's role in the given organization, or
// "" when the caller has no access to it. API keys only ever see the one
// organization they are bound to.
func resolveOrgRole(db *gorm.DB, principal *middleware.Principal, orgID uuid.UUID) string {
	if principal.Type == middleware.PrincipalTypeAPIKey {
		if principal.OrganizationID == orgID {
			return principal.OrganizationRole
		}
		return ""
	}

	var membership models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", principal.UserID, orgID).
		First(&membership).Error; err != nil {
		return ""
	}
	return membership.Role
}

// GetOrganization returns one organization the caller belongs to
// @Summary Get organization by ID
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Organization"
// @Failure 400 {object} map[string]string "Invalid organization ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/{id} [get]
func GetOrganization(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	orgUUID, ok := parseUUIDParam(ctx, "id", "organization")
	if !ok {
		return
	}

	db := database.GetDB()

	// Non-members learn nothing, not even that the organization exists
	role := resolveOrgRole(db, principal, orgUUID)
	if role == "" {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Organization not found",
			"message": "Organization with the given ID does not exist",
		})
		return
	}

	var org models.Organization
	if err := db.First(&org, orgUUID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	var memberCount int64
	db.Model(&models.Membership{}).Where("organization_id = ?", org.ID).Count(&memberCount)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"organization": org,
			"role":         role,
			"member_count": memberCount,
		},
	})
}

// UpdateOrganization updates an organization's details
// @Summary Update organization
// @Description Update name, slug or metadata. Requires admin role or above in the target organization.
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param organization body UpdateOrganizationRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated organization"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 409 {object} map[string]string "Slug already in use"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/{id} [patch]
func UpdateOrganization(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	orgUUID, ok := parseUUIDParam(ctx, "id", "organization")
	if !ok {
		return
	}

	db := database.GetDB()

	role := resolveOrgRole(db, principal, orgUUID)
	if role == "" {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Organization not found",
			"message": "Organization with the given ID does not exist",
		})
		return
	}
	if !authutils.CanManageOrg(role) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "Admin role or above is required for this operation",
		})
		return
	}

	var req UpdateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	var org models.Organization
	if err := db.First(&org, orgUUID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if slug != org.Slug {
			var existing models.Organization
			if err := db.Where("slug = ? AND id != ?", slug, org.ID).First(&existing).Error; err == nil {
				ctx.JSON(http.StatusConflict, gin.H{
					"success": false,
					"error":   "Slug already in use",
					"message": "An organization with slug '" + slug + "' already exists",
				})
				return
			} else if err != gorm.ErrRecordNotFound {
				ctx.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Failed to check slug",
					"message": err.Error(),
				})
				return
			}
			updates["slug"] = slug
		}
	}
	if req.Metadata != nil {
		updates["metadata"] = models.JSONMap(req.Metadata)
	}

	if len(updates) > 0 {
		if err := db.Model(&org).Updates(updates).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to update organization",
				"message": err.Error(),
			})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization updated successfully",
		"data":    org,
	})
}

// DeleteOrganization removes an organization and everything in it
// @Summary Delete organization
// @Description Delete the organization with all its documents, assets, memberships, invitations and API keys in one transaction. Owner only.
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid organization ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/{id} [delete]
func DeleteOrganization(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	orgUUID, ok := parseUUIDParam(ctx, "id", "organization")
	if !ok {
		return
	}

	db := database.GetDB()

	role := resolveOrgRole(db, principal, orgUUID)
	if role == "" {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Organization not found",
			"message": "Organization with the given ID does not exist",
		})
		return
	}
	if !authutils.CanDeleteOrg(role) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "Only the owner can delete an organization",
		})
		return
	}

	if err := services.DeleteOrganizationCascade(ctx.Request.Context(), db, storageService, orgUUID); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization deleted successfully",
	})
}

// SwitchOrganization repoints the session's active organization
// @Summary Switch active organization
// @Description Point the current session at another organization the user belongs to. Session principals only; API keys are bound to one organization.
// @Tags organizations
// @Accept json
// @Produce json
// @Param body body SwitchOrganizationRequest true "Target organization"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "New active organization"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a member of the target organization"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/switch [post]
func SwitchOrganization(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	if principal.Type != middleware.PrincipalTypeSession {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "API keys are bound to a single organization",
		})
		return
	}

	var req SwitchOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	targetOrgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid organization ID format",
			"message": "The provided organization ID is not a valid UUID",
		})
		return
	}

	db := database.GetDB()

	var membership models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", principal.UserID, targetOrgID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Forbidden",
				"message": "You are not a member of this organization",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to check membership",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&auth.UserSession{}).
		Where("session_id = ?", principal.SessionID).
		Update("organization_id", targetOrgID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to switch organization",
			"message": err.Error(),
		})
		return
	}

	var org models.Organization
	if err := db.First(&org, targetOrgID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Active organization switched",
		"data": organizationWithRole{
			Organization: org,
			Role:         membership.Role,
		},
	})
}
