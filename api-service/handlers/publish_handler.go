package handlers

import (
	"log"
	"net/http"
	"time"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/realtime"
	"forgecms-backend/shared/database"
	contentmodels "forgecms-backend/shared/database/models/content"
	"forgecms-backend/shared/schema"
	"forgecms-backend/shared/utils/cache"
	contentutils "forgecms-backend/shared/utils/content"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublishDocument validates a draft and promotes it to published
// @Summary Publish a document
// @Description Validate every schema field of the draft; on success promote the draft to the published copy atomically. Any validation error leaves the document untouched.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Published document"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents/{id}/publish [post]
func PublishDocument(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	docUUID, ok := parseUUIDParam(ctx, "id", "document")
	if !ok {
		return
	}

	db := database.GetDB()

	var doc contentmodels.Document
	if err := db.Where("organization_id = ?", principal.OrganizationID).First(&doc, docUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Document not found",
				"message": "Document with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve document",
			"message": err.Error(),
		})
		return
	}

	schemaType, ok := schema.GetSchemaTypeByName(doc.Type)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown schema type",
			"message": "No schema type registered with name " + doc.Type,
		})
		return
	}

	// All fields are validated before anything is written; a single
	// failure leaves the document untouched. Reference targets are
	// resolved against the organization's documents so a typed reference
	// cannot publish pointing at a missing or wrong-typed document.
	validationErrors := schema.ValidateDocument(schemaType, doc.DraftData)
	validationErrors = append(validationErrors, schema.ValidateReferenceTargets(schemaType, doc.DraftData,
		func(id uuid.UUID) (string, bool) {
			var ref contentmodels.Document
			if err := db.Select("type").Where("organization_id = ?", doc.OrganizationID).First(&ref, id).Error; err != nil {
				return "", false
			}
			return ref.Type, true
		})...)
	if len(validationErrors) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success":           false,
			"error":             "Validation failed",
			"message":           "Draft data does not satisfy the schema",
			"validation_errors": validationErrors,
		})
		return
	}

	publishedHash, err := contentutils.Hash(doc.DraftData)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to hash content",
			"message": err.Error(),
		})
		return
	}

	now := time.Now().UTC()
	doc.PublishedData = doc.DraftData
	doc.PublishedHash = publishedHash
	doc.Status = contentmodels.StatusPublished
	doc.PublishedAt = &now
	doc.UpdatedBy = principal.ActorID()

	if err := db.Save(&doc).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to publish document",
			"message": err.Error(),
		})
		return
	}

	if err := cache.GetCacheManager().SetPublishedDocument(doc.OrganizationID, doc.ID, &cache.PublishedDocumentCacheData{
		DocumentID:    doc.ID.String(),
		Type:          doc.Type,
		PublishedData: doc.PublishedData,
		PublishedHash: doc.PublishedHash,
		CachedAt:      now,
	}); err != nil {
		log.Printf("⚠️ Failed to cache published document %s: %v", doc.ID, err)
	}

	realtime.GetHub().Publish(realtime.Event{
		Type:           realtime.EventDocumentPublished,
		OrganizationID: doc.OrganizationID.String(),
		EntityID:       doc.ID.String(),
		ActorID:        principal.ActorID().String(),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document published successfully",
		"data":    buildDocumentResponse(db, &doc, 0),
	})
}

// UnpublishDocument reverts a document to draft status
// @Summary Unpublish a document
// @Description Clear the published copy and return the document to draft status. The draft data is preserved.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Document back in draft"
// @Failure 400 {object} map[string]string "Invalid document ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is not published"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents/{id}/publish [delete]
func UnpublishDocument(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	docUUID, ok := parseUUIDParam(ctx, "id", "document")
	if !ok {
		return
	}

	db := database.GetDB()

	var doc contentmodels.Document
	if err := db.Where("organization_id = ?", principal.OrganizationID).First(&doc, docUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Document not found",
				"message": "Document with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve document",
			"message": err.Error(),
		})
		return
	}

	if doc.Status != contentmodels.StatusPublished {
		ctx.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Document is not published",
			"message": "Only published documents can be unpublished",
		})
		return
	}

	doc.PublishedData = nil
	doc.PublishedHash = ""
	doc.Status = contentmodels.StatusDraft
	doc.PublishedAt = nil
	doc.UpdatedBy = principal.ActorID()

	// Save skips zero values on struct updates; use an explicit column map
	// so the published fields are actually cleared
	if err := db.Model(&doc).Updates(map[string]interface{}{
		"published_data": nil,
		"published_hash": "",
		"status":         contentmodels.StatusDraft,
		"published_at":   nil,
		"updated_by":     principal.ActorID(),
	}).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to unpublish document",
			"message": err.Error(),
		})
		return
	}

	invalidatePublishedCache(doc.OrganizationID, doc.ID)

	realtime.GetHub().Publish(realtime.Event{
		Type:           realtime.EventDocumentUnpublished,
		OrganizationID: doc.OrganizationID.String(),
		EntityID:       doc.ID.String(),
		ActorID:        principal.ActorID().String(),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document unpublished successfully",
		"data":    buildDocumentResponse(db, &doc, 0),
	})
}

// GetPublishedDocument serves the published copy of a document. Reads are
// answered from the cache when possible; a miss falls back to the database
// and refills the cache.
// @Summary Get the published copy of a document
// @Description Return only the published data of a document, served from the cache when a fresh entry exists. Drafts are not visible here.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Published copy"
// @Failure 400 {object} map[string]string "Invalid document ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found or not published"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents/{id}/published [get]
func GetPublishedDocument(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	docUUID, ok := parseUUIDParam(ctx, "id", "document")
	if !ok {
		return
	}

	if cached, err := cache.GetCacheManager().GetPublishedDocument(principal.OrganizationID, docUUID); err == nil && cached != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"id":             cached.DocumentID,
				"type":           cached.Type,
				"published_data": cached.PublishedData,
				"published_hash": cached.PublishedHash,
			},
			"cached": true,
		})
		return
	}

	db := database.GetDB()

	var doc contentmodels.Document
	if err := db.Where("organization_id = ?", principal.OrganizationID).First(&doc, docUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Document not found",
				"message": "Document with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve document",
			"message": err.Error(),
		})
		return
	}

	if doc.Status != contentmodels.StatusPublished {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Document not published",
			"message": "This document has no published copy",
		})
		return
	}

	// Refill the cache so the next read skips the database
	if err := cache.GetCacheManager().SetPublishedDocument(doc.OrganizationID, doc.ID, &cache.PublishedDocumentCacheData{
		DocumentID:    doc.ID.String(),
		Type:          doc.Type,
		PublishedData: doc.PublishedData,
		PublishedHash: doc.PublishedHash,
		CachedAt:      time.Now().UTC(),
	}); err != nil {
		log.Printf("⚠️ Failed to cache published document %s: %v", doc.ID, err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":             doc.ID.String(),
			"type":           doc.Type,
			"published_data": doc.PublishedData,
			"published_hash": doc.PublishedHash,
		},
		"cached": false,
	})
}
