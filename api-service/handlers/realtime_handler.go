package handlers

import (
	"log"
	"net/http"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/realtime"

	"github.com/gin-gonic/gin"
)

// ConnectRealtime upgrades to a websocket subscribed to the active
// organization's content events
// @Summary Subscribe to realtime events
// @Description Upgrade to a websocket that receives document and asset lifecycle events of the active organization
// @Tags realtime
// @Security BearerAuth
// @Success 101 "Switching protocols"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /realtime [get]
func ConnectRealtime(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	err := realtime.ServeWS(
		realtime.GetHub(),
		ctx.Writer,
		ctx.Request,
		principal.OrganizationID.String(),
		principal.ActorID().String(),
	)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to upgrade connection",
			"message": err.Error(),
		})
	}
}
