package handlers

import (
	"net/http"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/realtime"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
	contentmodels "forgecms-backend/shared/database/models/content"
	"forgecms-backend/shared/schema"
	contentutils "forgecms-backend/shared/utils/content"
	"forgecms-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateDocumentRequest represents request body for creating a document
type CreateDocumentRequest struct {
	Type      string         `json:"type" binding:"required"`
	DraftData models.JSONMap `json:"draft_data" binding:"required"`
}

// UpdateDocumentRequest represents request body for updating a draft
type UpdateDocumentRequest struct {
	DraftData models.JSONMap `json:"draft_data" binding:"required"`
}

// DocumentResponse represents document data for API responses
type DocumentResponse struct {
	ID                    uuid.UUID      `json:"id"`
	Type                  string         `json:"type"`
	Status                string         `json:"status"`
	DraftData             models.JSONMap `json:"draft_data"`
	PublishedData         models.JSONMap `json:"published_data,omitempty"`
	PublishedHash         string         `json:"published_hash,omitempty"`
	HasUnpublishedChanges bool           `json:"has_unpublished_changes"`
	OrganizationID        uuid.UUID      `json:"organization_id"`
	CreatedBy             uuid.UUID      `json:"created_by"`
	CreatedAt             string         `json:"created_at"`
	UpdatedAt             string         `json:"updated_at"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// buildDocumentResponse converts a document row to its API shape, with
// references expanded to the requested depth
func buildDocumentResponse(db *gorm.DB, doc *contentmodels.Document, depth int) DocumentResponse {
	lookup := referenceLookup(db, doc.OrganizationID)

	return DocumentResponse{
		ID:                    doc.ID,
		Type:                  doc.Type,
		Status:                doc.Status,
		DraftData:             contentutils.ExpandReferences(doc.DraftData, depth, lookup),
		PublishedData:         contentutils.ExpandReferences(doc.PublishedData, depth, lookup),
		PublishedHash:         doc.PublishedHash,
		HasUnpublishedChanges: contentutils.HasUnpublishedChanges(doc.DraftData, doc.PublishedHash),
		OrganizationID:        doc.OrganizationID,
		CreatedBy:             doc.CreatedBy,
		CreatedAt:             doc.CreatedAt.Format(timeFormat),
		UpdatedAt:             doc.UpdatedAt.Format(timeFormat),
	}
}

// referenceLookup resolves referenced documents within the organization
func referenceLookup(db *gorm.DB, orgID uuid.UUID) contentutils.LookupFunc {
	return func(id uuid.UUID) (map[string]interface{}, bool) {
		var ref contentmodels.Document
		if err := db.Where("organization_id = ?", orgID).First(&ref, id).Error; err != nil {
			return nil, false
		}

		resolved := map[string]interface{}{
			"_id":   ref.ID.String(),
			"_type": ref.Type,
		}
		for key, value := range ref.DraftData {
			resolved[key] = value
		}
		return resolved, true
	}
}

// GetDocuments lists documents of the active organization
// @Summary List documents
// @Description List documents filtered by type and status, with pagination and reference expansion
// @Tags documents
// @Accept json
// @Produce json
// @Param type query string false "Filter by schema type"
// @Param status query string false "Filter by status (draft, published)"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Param offset query int false "Offset (default: 0)"
// @Param depth query int false "Reference expansion depth, clamped to [0,5]"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of documents"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents [get]
func GetDocuments(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	db := database.GetDB()

	params := query.ParseListParams(ctx, "type", "status")
	depth := query.ParseDepth(ctx.Query("depth"))

	allowedFilters := map[string]string{
		"type":   "type",
		"status": "status",
	}

	dbQuery := db.Model(&contentmodels.Document{}).
		Where("organization_id = ?", principal.OrganizationID)
	dbQuery = query.ApplyFilters(dbQuery, params.Filter, allowedFilters)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to count documents",
			"message": err.Error(),
		})
		return
	}

	var documents []contentmodels.Document
	if err := query.ApplyPagination(dbQuery, params).Order("created_at DESC").Find(&documents).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve documents",
			"message": err.Error(),
		})
		return
	}

	responses := make([]DocumentResponse, 0, len(documents))
	for i := range documents {
		responses = append(responses, buildDocumentResponse(db, &documents[i], depth))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      responses,
			"pagination": query.BuildPaginationResponse(params, total),
		},
	})
}

// CreateDocument creates a new draft document
// @Summary Create a document
// @Description Create a new document in draft status. Draft data is not validated at creation.
// @Tags documents
// @Accept json
// @Produce json
// @Param document body CreateDocumentRequest true "Document type and draft data"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created document"
// @Failure 400 {object} map[string]string "Missing type or draft data, or unknown schema type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents [post]
func CreateDocument(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	var req CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if _, ok := schema.GetSchemaTypeByName(req.Type); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown schema type",
			"message": "No schema type registered with name " + req.Type,
		})
		return
	}

	db := database.GetDB()

	doc := contentmodels.Document{
		Type:           req.Type,
		DraftData:      req.DraftData,
		Status:         contentmodels.StatusDraft,
		OrganizationID: principal.OrganizationID,
		CreatedBy:      principal.ActorID(),
		UpdatedBy:      principal.ActorID(),
	}

	if err := db.Create(&doc).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create document",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Document created successfully",
		"data":    buildDocumentResponse(db, &doc, 0),
	})
}

// GetDocument retrieves a single document by ID
// @Summary Get document by ID
// @Description Get a document with references expanded to the requested depth
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Param depth query int false "Reference expansion depth, clamped to [0,5]"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Document"
// @Failure 400 {object} map[string]string "Invalid document ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents/{id} [get]
func GetDocument(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)

	docUUID, ok := parseUUIDParam(ctx, "id", "document")
	if !ok {
		return
	}
	depth := query.ParseDepth(ctx.Query("depth"))

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

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    buildDocumentResponse(db, &doc, depth),
	})
}

// UpdateDocument replaces a document's draft data
// @Summary Update a document draft
// @Description Replace the draft data of a document. Drafts accept arbitrary shapes; validation happens at publish.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Param document body UpdateDocumentRequest true "New draft data"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated document"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents/{id} [put]
func UpdateDocument(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	if !requireWrite(ctx, principal) {
		return
	}

	docUUID, ok := parseUUIDParam(ctx, "id", "document")
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
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

	doc.DraftData = req.DraftData
	doc.UpdatedBy = principal.ActorID()

	if err := db.Save(&doc).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update document",
			"message": err.Error(),
		})
		return
	}

	realtime.GetHub().Publish(realtime.Event{
		Type:           realtime.EventDocumentUpdated,
		OrganizationID: doc.OrganizationID.String(),
		EntityID:       doc.ID.String(),
		ActorID:        principal.ActorID().String(),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document updated successfully",
		"data":    buildDocumentResponse(db, &doc, 0),
	})
}

// DeleteDocument deletes a document
// @Summary Delete a document
// @Description Delete a document and drop its cached published copy
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid document ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /documents/{id} [delete]
func DeleteDocument(ctx *gin.Context) {
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

	if err := db.Delete(&doc).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete document",
			"message": err.Error(),
		})
		return
	}

	invalidatePublishedCache(doc.OrganizationID, doc.ID)

	realtime.GetHub().Publish(realtime.Event{
		Type:           realtime.EventDocumentDeleted,
		OrganizationID: doc.OrganizationID.String(),
		EntityID:       doc.ID.String(),
		ActorID:        principal.ActorID().String(),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document deleted successfully",
	})
}
