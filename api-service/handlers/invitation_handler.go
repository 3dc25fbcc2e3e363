package handlers

import (
	"net/http"
	"strings"
	"time"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	authutils "forgecms-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Invitations expire after a week; expired rows are ignored and can be
// re-issued
const invitationTTL = 7 * 24 * time.Hour

// CreateInvitationRequest represents request body for inviting a user
type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AcceptInvitationRequest carries the invitation token
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// GetInvitations lists pending invitations of the active organization
// @Summary List pending invitations
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of invitations"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/invitations [get]
func GetInvitations(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireOrgAdmin(ctx, principal) {
		return
	}

	db := database.GetDB()

	var invitations []models.Invitation
	if err := db.Where("organization_id = ? AND expires_at > ?", principal.OrganizationID, time.Now()).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve invitations",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invitations,
	})
}

// CreateInvitation invites an email address into the active organization
// @Summary Invite a user
// @Description Create an invitation with a role at or below the caller's own. The token travels out of band.
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitation body CreateInvitationRequest true "Email and role"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created invitation with its token"
// @Failure 400 {object} map[string]string "Invalid email or role"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Already a member or already invited"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/invitations [post]
func CreateInvitation(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireOrgAdmin(ctx, principal) {
		return
	}

	var req CreateInvitationRequest
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

	// Nobody invites above their own level
	if authutils.RoleLevel(req.Role) > authutils.RoleLevel(principal.OrganizationRole) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "You cannot invite a member above your own role",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := database.GetDB()

	// Reject if the address already belongs to a member
	var existingUser models.User
	if err := db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		var membership models.Membership
		if err := db.Where("user_id = ? AND organization_id = ?", existingUser.ID, principal.OrganizationID).
			First(&membership).Error; err == nil {
			ctx.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Already a member",
				"message": "This user is already a member of the organization",
			})
			return
		}
	}

	var pending models.Invitation
	if err := db.Where("email = ? AND organization_id = ? AND expires_at > ?",
		email, principal.OrganizationID, time.Now()).First(&pending).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Already invited",
			"message": "A pending invitation for this email already exists",
		})
		return
	}

	token, err := authutils.GenerateRandomToken(32)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate invitation token",
			"message": err.Error(),
		})
		return
	}

	invitation := models.Invitation{
		Email:          email,
		Role:           req.Role,
		Token:          token,
		OrganizationID: principal.OrganizationID,
		InvitedBy:      principal.ActorID(),
		ExpiresAt:      time.Now().Add(invitationTTL),
	}

	if err := db.Create(&invitation).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create invitation",
			"message": err.Error(),
		})
		return
	}

	// The token is returned once, to be delivered out of band
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Invitation created successfully",
		"data": gin.H{
			"invitation": invitation,
			"token":      token,
		},
	})
}

// RevokeInvitation deletes a pending invitation
// @Summary Revoke an invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Param id path string true "Invitation ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid invitation ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/invitations/{id} [delete]
func RevokeInvitation(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireOrgAdmin(ctx, principal) {
		return
	}

	invitationUUID, ok := parseUUIDParam(ctx, "id", "invitation")
	if !ok {
		return
	}

	db := database.GetDB()

	result := db.Where("organization_id = ?", principal.OrganizationID).
		Delete(&models.Invitation{}, invitationUUID)
	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to revoke invitation",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Invitation not found",
			"message": "Invitation with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invitation revoked successfully",
	})
}

// AcceptInvitation redeems an invitation token for a membership
// @Summary Accept an invitation
// @Description Redeem an invitation token. The authenticated user's email must match the invited address. The session switches to the joined organization.
// @Tags invitations
// @Accept json
// @Produce json
// @Param body body AcceptInvitationRequest true "Invitation token"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "New membership"
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Invitation addressed to a different email"
// @Failure 409 {object} map[string]string "Already a member"
// @Failure 500 {object} map[string]string "Server error"
// @Router /invitations/accept [post]
func AcceptInvitation(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	if principal.Type != middleware.PrincipalTypeSession {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "API keys cannot accept invitations",
		})
		return
	}

	var req AcceptInvitationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.GetDB()

	var invitation models.Invitation
	if err := db.Where("token = ?", req.Token).First(&invitation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid invitation token",
				"message": "No invitation matches this token",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to look up invitation",
			"message": err.Error(),
		})
		return
	}

	if time.Now().After(invitation.ExpiresAt) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invitation expired",
			"message": "This invitation has expired, ask for a new one",
		})
		return
	}

	if !strings.EqualFold(invitation.Email, principal.Email) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "This invitation was addressed to a different email",
		})
		return
	}

	var existing models.Membership
	if err := db.Where("user_id = ? AND organization_id = ?", principal.UserID, invitation.OrganizationID).
		First(&existing).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Already a member",
			"message": "You already belong to this organization",
		})
		return
	}

	membership := models.Membership{
		UserID:         principal.UserID,
		OrganizationID: invitation.OrganizationID,
		Role:           invitation.Role,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return tx.Delete(&invitation).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to accept invitation",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invitation accepted successfully",
		"data":    membership,
	})
}
