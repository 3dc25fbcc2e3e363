package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	"forgecms-backend/shared/database/models/auth"
	authutils "forgecms-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterRequest represents request body for user registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// LoginRequest represents request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Register creates a new user account
// @Summary Register
// @Description Create a user account. The user joins organizations via invitations or by creating their own.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "Created user"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 409 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/register [post]
func Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := database.GetDB()

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Email already registered",
			"message": "An account with this email already exists",
		})
		return
	} else if err != gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to check email",
			"message": err.Error(),
		})
		return
	}

	hashedPassword, err := authutils.HashPassword(req.Password)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to hash password",
			"message": err.Error(),
		})
		return
	}

	user := models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if err := db.Create(&user).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create user",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"data":    user,
	})
}

// Login verifies credentials and opens a session
// @Summary Login
// @Description Verify credentials, create a session and return a JWT. The session's active organization starts as the user's oldest membership.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} map[string]interface{} "Token, user and active organization"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/login [post]
func Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := database.GetDB()

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		// Same response for unknown email and wrong password
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid credentials",
			"message": "Email or password is incorrect",
		})
		return
	}

	if !authutils.CheckPassword(user.Password, req.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid credentials",
			"message": "Email or password is incorrect",
		})
		return
	}

	sessionID, err := authutils.GenerateSessionID()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create session",
			"message": err.Error(),
		})
		return
	}

	token, err := authutils.GenerateJWT(user.ID, user.Email, sessionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate token",
			"message": err.Error(),
		})
		return
	}

	// The session opens in the user's oldest organization, if any
	var activeOrgID *uuid.UUID
	var membership models.Membership
	if err := db.Where("user_id = ?", user.ID).Order("created_at ASC").First(&membership).Error; err == nil {
		activeOrgID = &membership.OrganizationID
	}

	session := auth.UserSession{
		UserID:         user.ID,
		SessionID:      sessionID,
		TokenHash:      hashToken(token),
		OrganizationID: activeOrgID,
		UserAgent:      ctx.Request.UserAgent(),
		IPAddress:      ctx.ClientIP(),
		IsActive:       true,
		ExpiresAt:      time.Now().Add(authutils.GetJWTExpireDuration()),
	}

	if err := db.Create(&session).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create session",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"token":           token,
			"expires_at":      session.ExpiresAt,
			"user":            user,
			"organization_id": activeOrgID,
		},
	})
}

// Logout deactivates the current session
// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/logout [post]
func Logout(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	if principal.Type != middleware.PrincipalTypeSession {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "API keys have no session to log out",
		})
		return
	}

	db := database.GetDB()

	if err := db.Model(&auth.UserSession{}).
		Where("session_id = ?", principal.SessionID).
		Update("is_active", false).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to log out",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GetMe returns the authenticated user's profile and active organization
// @Summary Current user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "User profile"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/me [get]
func GetMe(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	if principal.Type != middleware.PrincipalTypeSession {
		ctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"principal_type":  middleware.PrincipalTypeAPIKey,
				"organization_id": principal.OrganizationID,
				"role":            principal.OrganizationRole,
			},
		})
		return
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, principal.UserID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve user",
			"message": err.Error(),
		})
		return
	}

	response := gin.H{
		"principal_type": middleware.PrincipalTypeSession,
		"user":           user,
	}
	if principal.OrganizationID != uuid.Nil {
		response["organization_id"] = principal.OrganizationID
		response["role"] = principal.OrganizationRole
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}
