package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	"forgecms-backend/shared/database/models/auth"
	utils "forgecms-backend/shared/utils/auth"
)

// Principal types
const (
	PrincipalTypeSession = "session"
	PrincipalTypeAPIKey  = "apikey"
)

const principalContextKey = "principal"

// Principal is the authenticated caller of a request: either a user
// session (with the session's active organization) or an API key bound to
// a single organization.
type Principal struct {
	Type             string
	UserID           uuid.UUID
	Email            string
	SessionID        string
	KeyID            uuid.UUID
	OrganizationID   uuid.UUID
	OrganizationRole string
}

// ActorID returns the id recorded as created_by/updated_by: the user for
// sessions, the key id for API keys
func (p *Principal) ActorID() uuid.UUID {
	if p.Type == PrincipalTypeAPIKey {
		return p.KeyID
	}
	return p.UserID
}

// SetPrincipal stores the principal in the request context
func SetPrincipal(c *gin.Context, p *Principal) {
	c.Set(principalContextKey, p)
}

// GetPrincipal returns the authenticated principal set by AuthMiddleware
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*Principal)
	return principal, ok
}

// AuthMiddleware authenticates the request via session JWT (Authorization:
// Bearer) or API key (X-API-Key) and sets the principal in context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
			authenticateAPIKey(c, apiKey)
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header or X-API-Key is required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format. Expected Bearer {token}"})
			c.Abort()
			return
		}

		authenticateSession(c, tokenParts[1])
	}
}

func authenticateSession(c *gin.Context, tokenString string) {
	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
		c.Abort()
		return
	}

	db := database.GetDB()

	var session auth.UserSession
	if err := db.Where("session_id = ? AND is_active = ?", claims.SessionID, true).First(&session).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session not found or terminated"})
		c.Abort()
		return
	}

	if time.Now().After(session.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		c.Abort()
		return
	}

	principal := &Principal{
		Type:      PrincipalTypeSession,
		UserID:    userID,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}

	// Resolve the active organization and the caller's role in it
	if session.OrganizationID != nil {
		var membership models.Membership
		if err := db.Where("user_id = ? AND organization_id = ?", userID, *session.OrganizationID).First(&membership).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of the active organization"})
			c.Abort()
			return
		}
		principal.OrganizationID = *session.OrganizationID
		principal.OrganizationRole = membership.Role
	}

	c.Set(principalContextKey, principal)
	c.Next()
}

func authenticateAPIKey(c *gin.Context, apiKey string) {
	if !strings.HasPrefix(apiKey, "fcms_") || len(apiKey) < 13 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key format"})
		c.Abort()
		return
	}

	prefix := apiKey[5:13]

	db := database.GetDB()

	var key auth.ApiKey
	if err := db.Where("key_prefix = ? AND is_active = ?", prefix, true).First(&key).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		c.Abort()
		return
	}

	if !utils.CheckPassword(key.KeyHash, apiKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		c.Abort()
		return
	}

	// Best effort usage tracking
	now := time.Now()
	db.Model(&key).Update("last_used_at", &now)

	c.Set(principalContextKey, &Principal{
		Type:             PrincipalTypeAPIKey,
		KeyID:            key.ID,
		OrganizationID:   key.OrganizationID,
		OrganizationRole: key.Role,
	})
	c.Next()
}

// RequireOrganization aborts with 403 when the principal has no active
// organization (sessions that never joined or switched into one)
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if principal.OrganizationID == uuid.Nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "No active organization"})
			c.Abort()
			return
		}
		c.Next()
	}
}
