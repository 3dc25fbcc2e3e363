package handlers

import (
	"net/http"

	"forgecms-backend/api-service/middleware"
	authutils "forgecms-backend/shared/utils/auth"
	"forgecms-backend/shared/utils/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireWrite rejects principals below editor before any database work
func requireWrite(ctx *gin.Context, principal *middleware.Principal) bool {
	if !authutils.CanWrite(principal.OrganizationRole) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "Editor role or above is required for this operation",
		})
		return false
	}
	return true
}

// requireOrgAdmin rejects principals below admin
func requireOrgAdmin(ctx *gin.Context, principal *middleware.Principal) bool {
	if !authutils.CanManageOrg(principal.OrganizationRole) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "Admin role or above is required for this operation",
		})
		return false
	}
	return true
}

// parseUUIDParam parses a path parameter as a UUID and writes the 400
// response itself on failure
func parseUUIDParam(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid " + label + " ID format",
			"message": "The provided " + label + " ID is not a valid UUID",
		})
		return uuid.Nil, false
	}
	return parsed, true
}

// invalidatePublishedCache drops the cached published copy of a document.
// Cache failures are logged inside the cache manager, never surfaced to
// the client.
func invalidatePublishedCache(orgID, docID uuid.UUID) {
	cache.GetCacheManager().InvalidatePublishedDocument(orgID, docID)
}
