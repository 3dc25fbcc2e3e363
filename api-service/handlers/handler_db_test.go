package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"forgecms-backend/shared/database"
	"forgecms-backend/shared/database/models"
)

// withMockDB swaps the global database handle for a sqlmock-backed one for
// the duration of the test.
func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})

	return mock
}

func membershipRow(userID, orgID uuid.UUID, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "organization_id", "role", "created_at", "updated_at"}).
		AddRow(uuid.New(), userID, orgID, role, time.Now(), time.Now())
}

func organizationRow(orgID uuid.UUID, name, slug string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "created_at", "updated_at"}).
		AddRow(orgID, name, slug, time.Now(), time.Now())
}

func TestUpdateOrganizationRejectsTakenSlug(t *testing.T) {
	mock := withMockDB(t)

	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleOwner
	orgID := principal.OrganizationID

	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = .+ AND organization_id = .+`).
		WillReturnRows(membershipRow(principal.UserID, orgID, models.RoleOwner))
	mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE "organizations"\."id" = .+`).
		WillReturnRows(organizationRow(orgID, "Acme", "acme"))
	mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE slug = .+ AND id != .+`).
		WillReturnRows(organizationRow(uuid.New(), "Globex", "globex"))

	router := newTestRouter(principal)
	router.PATCH("/api/organizations/:id", UpdateOrganization)

	rec := perform(router, http.MethodPatch, "/api/organizations/"+orgID.String(), gin.H{"slug": "globex"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrganizationAcceptsOwnUnchangedSlug(t *testing.T) {
	mock := withMockDB(t)

	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleOwner
	orgID := principal.OrganizationID

	// Re-submitting the current slug needs no uniqueness check and no write
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = .+ AND organization_id = .+`).
		WillReturnRows(membershipRow(principal.UserID, orgID, models.RoleOwner))
	mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE "organizations"\."id" = .+`).
		WillReturnRows(organizationRow(orgID, "Acme", "acme"))

	router := newTestRouter(principal)
	router.PATCH("/api/organizations/:id", UpdateOrganization)

	rec := perform(router, http.MethodPatch, "/api/organizations/"+orgID.String(), gin.H{"slug": "acme"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishReturnsValidationErrorsWithoutWriting(t *testing.T) {
	mock := withMockDB(t)

	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleEditor
	docID := uuid.New()

	// title and body missing, slug malformed: three errors, no update
	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE organization_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "type", "draft_data", "status", "organization_id", "created_by", "created_at", "updated_at",
		}).AddRow(
			docID, "post", []byte(`{"slug":"Not A Slug!"}`), "draft",
			principal.OrganizationID, principal.UserID, time.Now(), time.Now(),
		))

	router := newTestRouter(principal)
	router.POST("/api/documents/:id/publish", PublishDocument)

	rec := perform(router, http.MethodPost, "/api/documents/"+docID.String()+"/publish", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success          bool `json:"success"`
		ValidationErrors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"validation_errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.Len(t, body.ValidationErrors, 3)

	fields := make([]string, 0, len(body.ValidationErrors))
	for _, ve := range body.ValidationErrors {
		fields = append(fields, ve.Field)
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "body")

	// No UPDATE was expected; anything written would fail the mock
	assert.NoError(t, mock.ExpectationsWereMet())
}

func publishedDocumentRow(docID, orgID, createdBy uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "type", "draft_data", "published_data", "status", "published_hash",
		"organization_id", "created_by", "created_at", "updated_at",
	}).AddRow(
		docID, "page", []byte(`{"title":"Hello"}`), []byte(`{"title":"Hello"}`), "published",
		"deadbeef", orgID, createdBy, time.Now(), time.Now(),
	)
}

func TestGetPublishedDocumentFallsBackToDatabase(t *testing.T) {
	mock := withMockDB(t)

	principal := viewerPrincipal()
	docID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE organization_id = .+`).
		WillReturnRows(publishedDocumentRow(docID, principal.OrganizationID, principal.UserID))

	router := newTestRouter(principal)
	router.GET("/api/documents/:id/published", GetPublishedDocument)

	rec := perform(router, http.MethodGet, "/api/documents/"+docID.String()+"/published", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Cached  bool `json:"cached"`
		Data    struct {
			ID            string                 `json:"id"`
			Type          string                 `json:"type"`
			PublishedData map[string]interface{} `json:"published_data"`
			PublishedHash string                 `json:"published_hash"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.False(t, body.Cached)
	assert.Equal(t, docID.String(), body.Data.ID)
	assert.Equal(t, "Hello", body.Data.PublishedData["title"])
	assert.Equal(t, "deadbeef", body.Data.PublishedHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPublishedDocumentHidesDrafts(t *testing.T) {
	mock := withMockDB(t)

	principal := viewerPrincipal()
	docID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE organization_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "type", "draft_data", "status", "organization_id", "created_by", "created_at", "updated_at",
		}).AddRow(
			docID, "page", []byte(`{"title":"WIP"}`), "draft",
			principal.OrganizationID, principal.UserID, time.Now(), time.Now(),
		))

	router := newTestRouter(principal)
	router.GET("/api/documents/:id/published", GetPublishedDocument)

	rec := perform(router, http.MethodGet, "/api/documents/"+docID.String()+"/published", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
