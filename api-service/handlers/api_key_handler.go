package handlers

import (
	"net/http"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	"forgecms-backend/shared/database/models/auth"
	authutils "forgecms-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
)

// CreateApiKeyRequest represents request body for creating an API key
type CreateApiKeyRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required"`
}

// GetApiKeys lists the active organization's API keys
// @Summary List API keys
// @Description List API keys of the active organization. Only the prefix is shown, never the secret.
// @Tags api-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of API keys"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/api-keys [get]
func GetApiKeys(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireOrgAdmin(ctx, principal) {
		return
	}

	db := database.GetDB()

	var keys []auth.ApiKey
	if err := db.Where("organization_id = ?", principal.OrganizationID).
		Order("created_at DESC").Find(&keys).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve API keys",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    keys,
	})
}

// CreateApiKey creates an API key bound to the active organization
// @Summary Create an API key
// @Description Create an API key with a role at or below the caller's own (owner excluded). The full key is returned exactly once.
// @Tags api-keys
// @Accept json
// @Produce json
// @Param key body CreateApiKeyRequest true "Key name and role"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created key with its secret"
// @Failure 400 {object} map[string]string "Invalid role or request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/api-keys [post]
func CreateApiKey(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireOrgAdmin(ctx, principal) {
		return
	}

	var req CreateApiKeyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	// Keys act on behalf of the organization, never as its owner
	if !authutils.IsValidRole(req.Role) || req.Role == models.RoleOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid role",
			"message": "Role must be one of: admin, editor, viewer",
		})
		return
	}
	if authutils.RoleLevel(req.Role) > authutils.RoleLevel(principal.OrganizationRole) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "You cannot create a key above your own role",
		})
		return
	}

	fullKey, prefix, err := authutils.GenerateAPIKey()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate API key",
			"message": err.Error(),
		})
		return
	}

	keyHash, err := authutils.HashPassword(fullKey)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to hash API key",
			"message": err.Error(),
		})
		return
	}

	key := auth.ApiKey{
		Name:           req.Name,
		KeyPrefix:      prefix,
		KeyHash:        keyHash,
		OrganizationID: principal.OrganizationID,
		Role:           req.Role,
		IsActive:       true,
	}

	db := database.GetDB()
	if err := db.Create(&key).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create API key",
			"message": err.Error(),
		})
		return
	}

	// The secret is shown once and stored only as a bcrypt hash
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "API key created successfully",
		"data": gin.H{
			"api_key": key,
			"key":     fullKey,
		},
	})
}

// RevokeApiKey deactivates an API key
// @Summary Revoke an API key
// @Tags api-keys
// @Accept json
// @Produce json
// @Param id path string true "API key ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid API key ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "API key not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/api-keys/{id} [delete]
func RevokeApiKey(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireOrgAdmin(ctx, principal) {
		return
	}

	keyUUID, ok := parseUUIDParam(ctx, "id", "API key")
	if !ok {
		return
	}

	db := database.GetDB()

	result := db.Model(&auth.ApiKey{}).
		Where("id = ? AND organization_id = ?", keyUUID, principal.OrganizationID).
		Update("is_active", false)
	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to revoke API key",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "API key not found",
			"message": "API key with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API key revoked successfully",
	})
}
