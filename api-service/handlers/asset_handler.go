package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/realtime"
	"forgecms-backend/api-service/services"
	"forgecms-backend/shared/config"
	"forgecms-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	assetService   *services.AssetService
	storageService *services.StorageService
)

// InitAssetHandlers wires the asset handlers to their services. Called
// once from main before routes are registered.
func InitAssetHandlers(assets *services.AssetService, storage *services.StorageService) {
	assetService = assets
	storageService = storage
}

// UpdateAssetRequest carries the editable metadata of an asset
type UpdateAssetRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Alt         *string                `json:"alt"`
	CreditLine  *string                `json:"credit_line"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// UploadAsset accepts a multipart upload and stores it
// @Summary Upload an asset
// @Description Upload a file as multipart form data. Type and size are validated before anything is written.
// @Tags assets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param title formData string false "Display title"
// @Param description formData string false "Description"
// @Param alt formData string false "Alt text for images"
// @Param credit_line formData string false "Attribution line"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created asset"
// @Failure 400 {object} map[string]string "Missing file, disallowed type or oversize upload"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets [post]
func UploadAsset(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "No file provided",
			"message": "Request must include a 'file' form field",
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	cfg := config.GetConfig()

	// Reject before reading the body into memory
	if err := services.ValidateUpload(mimeType, fileHeader.Size, cfg.GetAssetAllowedMimeTypes(), cfg.GetAssetMaxFileSizeBytes()); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Upload rejected",
			"message": err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to read upload",
			"message": err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to read upload",
			"message": err.Error(),
		})
		return
	}

	asset, err := assetService.UploadAsset(ctx.Request.Context(), services.UploadAssetInput{
		Data:             data,
		OriginalFilename: fileHeader.Filename,
		MimeType:         mimeType,
		Title:            ctx.PostForm("title"),
		Description:      ctx.PostForm("description"),
		Alt:              ctx.PostForm("alt"),
		CreditLine:       ctx.PostForm("credit_line"),
		OrganizationID:   principal.OrganizationID,
		UploadedBy:       principal.ActorID(),
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to store asset",
			"message": err.Error(),
		})
		return
	}

	realtime.GetHub().Publish(realtime.Event{
		Type:           realtime.EventAssetCreated,
		OrganizationID: asset.OrganizationID.String(),
		EntityID:       asset.ID.String(),
		ActorID:        principal.ActorID().String(),
	})

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Asset uploaded successfully",
		"data":    asset,
	})
}

// GetAssets lists the organization's assets
// @Summary List assets
// @Description List assets filtered by type and MIME type, with search over filename, title and description
// @Tags assets
// @Accept json
// @Produce json
// @Param asset_type query string false "Filter by asset type (image, file)"
// @Param mime_type query string false "Filter by exact MIME type"
// @Param search query string false "Search term"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Param offset query int false "Offset (default: 0)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of assets"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets [get]
func GetAssets(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	params := query.ParseListParams(ctx)
	filters := services.AssetFilters{
		AssetType: ctx.Query("asset_type"),
		MimeType:  ctx.Query("mime_type"),
		Search:    params.Search,
	}

	assets, total, err := assetService.FindAssets(principal.OrganizationID, filters, params)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve assets",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      assets,
			"pagination": query.BuildPaginationResponse(params, total),
		},
	})
}

// GetAsset returns one asset by id
// @Summary Get asset by ID
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Asset"
// @Failure 400 {object} map[string]string "Invalid asset ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Asset not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets/{id} [get]
func GetAsset(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	assetUUID, ok := parseUUIDParam(ctx, "id", "asset")
	if !ok {
		return
	}

	asset, err := assetService.FindAssetByID(principal.OrganizationID, assetUUID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Asset not found",
				"message": "Asset with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve asset",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    asset,
	})
}

// UpdateAsset updates the descriptive metadata of an asset
// @Summary Update asset metadata
// @Description Update title, description, alt text, credit line and custom metadata. The binary and its storage coordinates are immutable.
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Param asset body UpdateAssetRequest true "Metadata fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated asset"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Asset not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets/{id} [patch]
func UpdateAsset(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	assetUUID, ok := parseUUIDParam(ctx, "id", "asset")
	if !ok {
		return
	}

	var req UpdateAssetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Alt != nil {
		updates["alt"] = *req.Alt
	}
	if req.CreditLine != nil {
		updates["credit_line"] = *req.CreditLine
	}
	if req.Metadata != nil {
		updates["metadata"] = req.Metadata
	}

	asset, err := assetService.UpdateAssetMetadata(principal.OrganizationID, assetUUID, updates)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Asset not found",
				"message": "Asset with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update asset",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asset updated successfully",
		"data":    asset,
	})
}

// DeleteAsset removes an asset and its backing object
// @Summary Delete an asset
// @Description Delete the stored object first, then the metadata row. If the object cannot be removed the row stays.
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid asset ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Asset not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets/{id} [delete]
func DeleteAsset(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	assetUUID, ok := parseUUIDParam(ctx, "id", "asset")
	if !ok {
		return
	}

	if err := assetService.DeleteAsset(ctx.Request.Context(), principal.OrganizationID, assetUUID); err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Asset not found",
				"message": "Asset with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete asset",
			"message": err.Error(),
		})
		return
	}

	realtime.GetHub().Publish(realtime.Event{
		Type:           realtime.EventAssetDeleted,
		OrganizationID: principal.OrganizationID.String(),
		EntityID:       assetUUID.String(),
		ActorID:        principal.ActorID().String(),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asset deleted successfully",
	})
}

const (
	defaultSignedURLExpiry = 15 * time.Minute
	maxSignedURLExpiry     = 24 * time.Hour
)

// GetAssetSignedURL returns a short-lived download URL for an asset
// @Summary Get a signed download URL
// @Description Generate a presigned URL for direct download from object storage. Expiry defaults to 900 seconds and is capped at 24 hours.
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Param expires query int false "Expiry in seconds (default: 900, max: 86400)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Signed URL and expiry"
// @Failure 400 {object} map[string]string "Invalid asset ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Asset not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets/{id}/url [get]
func GetAssetSignedURL(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	assetUUID, ok := parseUUIDParam(ctx, "id", "asset")
	if !ok {
		return
	}

	asset, err := assetService.FindAssetByID(principal.OrganizationID, assetUUID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Asset not found",
				"message": "Asset with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve asset",
			"message": err.Error(),
		})
		return
	}

	expiry := defaultSignedURLExpiry
	if raw := ctx.Query("expires"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			expiry = time.Duration(seconds) * time.Second
			if expiry > maxSignedURLExpiry {
				expiry = maxSignedURLExpiry
			}
		}
	}

	signedURL, err := storageService.PresignedURL(ctx.Request.Context(), asset.ObjectKey, expiry)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate signed URL",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url":        signedURL,
			"expires_in": int(expiry.Seconds()),
		},
	})
}
