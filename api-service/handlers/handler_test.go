package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"forgecms-backend/api-service/middleware"
	"forgecms-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(principal *middleware.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, principal)
	})
	return router
}

func viewerPrincipal() *middleware.Principal {
	return &middleware.Principal{
		Type:             middleware.PrincipalTypeSession,
		UserID:           uuid.New(),
		Email:            "viewer@example.com",
		SessionID:        "session-viewer",
		OrganizationID:   uuid.New(),
		OrganizationRole: models.RoleViewer,
	}
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// Write routes must reject viewers before touching the database: the
// handlers here run with no database configured at all.
func TestViewerGetsForbiddenOnWriteRoutes(t *testing.T) {
	principal := viewerPrincipal()
	docID := uuid.New().String()

	router := newTestRouter(principal)
	router.POST("/api/documents", CreateDocument)
	router.PUT("/api/documents/:id", UpdateDocument)
	router.DELETE("/api/documents/:id", DeleteDocument)
	router.POST("/api/documents/:id/publish", PublishDocument)
	router.DELETE("/api/documents/:id/publish", UnpublishDocument)
	router.POST("/api/assets", UploadAsset)
	router.PATCH("/api/assets/:id", UpdateAsset)
	router.DELETE("/api/assets/:id", DeleteAsset)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/documents"},
		{http.MethodPut, "/api/documents/" + docID},
		{http.MethodDelete, "/api/documents/" + docID},
		{http.MethodPost, "/api/documents/" + docID + "/publish"},
		{http.MethodDelete, "/api/documents/" + docID + "/publish"},
		{http.MethodPost, "/api/assets"},
		{http.MethodPatch, "/api/assets/" + docID},
		{http.MethodDelete, "/api/assets/" + docID},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := perform(router, tt.method, tt.path, gin.H{"draft_data": gin.H{}})
			assert.Equal(t, http.StatusForbidden, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestEditorCannotManageInvitations(t *testing.T) {
	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleEditor

	router := newTestRouter(principal)
	router.GET("/api/organizations/invitations", GetInvitations)
	router.POST("/api/organizations/invitations", CreateInvitation)
	router.DELETE("/api/organizations/invitations/:id", RevokeInvitation)
	router.GET("/api/organizations/api-keys", GetApiKeys)
	router.POST("/api/organizations/api-keys", CreateApiKey)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/organizations/invitations"},
		{http.MethodPost, "/api/organizations/invitations"},
		{http.MethodDelete, "/api/organizations/invitations/" + uuid.New().String()},
		{http.MethodGet, "/api/organizations/api-keys"},
		{http.MethodPost, "/api/organizations/api-keys"},
	} {
		rec := perform(router, tt.method, tt.path, gin.H{"email": "a@b.com", "role": "viewer"})
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestSelfMembershipChangesRejected(t *testing.T) {
	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleOwner

	router := newTestRouter(principal)
	router.PATCH("/api/organizations/members/:userId", UpdateMemberRole)
	router.DELETE("/api/organizations/members/:userId", RemoveMember)

	rec := perform(router, http.MethodPatch, "/api/organizations/members/"+principal.UserID.String(), gin.H{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = perform(router, http.MethodDelete, "/api/organizations/members/"+principal.UserID.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApiKeyPrincipalCannotSwitchOrganizations(t *testing.T) {
	principal := &middleware.Principal{
		Type:             middleware.PrincipalTypeAPIKey,
		KeyID:            uuid.New(),
		OrganizationID:   uuid.New(),
		OrganizationRole: models.RoleEditor,
	}

	router := newTestRouter(principal)
	router.POST("/api/organizations/switch", SwitchOrganization)
	router.POST("/api/invitations/accept", AcceptInvitation)

	rec := perform(router, http.MethodPost, "/api/organizations/switch", gin.H{"organization_id": uuid.New().String()})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = perform(router, http.MethodPost, "/api/invitations/accept", gin.H{"token": "abc"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateApiKeyRejectsOwnerRole(t *testing.T) {
	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleOwner

	router := newTestRouter(principal)
	router.POST("/api/organizations/api-keys", CreateApiKey)

	rec := perform(router, http.MethodPost, "/api/organizations/api-keys", gin.H{
		"name": "ci-key",
		"role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidUUIDParamRejected(t *testing.T) {
	principal := viewerPrincipal()
	principal.OrganizationRole = models.RoleEditor

	router := newTestRouter(principal)
	router.PUT("/api/documents/:id", UpdateDocument)

	rec := perform(router, http.MethodPut, "/api/documents/not-a-uuid", gin.H{"draft_data": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSchemasListsBuiltinTypes(t *testing.T) {
	router := newTestRouter(viewerPrincipal())
	router.GET("/api/schemas", GetSchemas)
	router.GET("/api/schemas/:type", GetSchema)

	rec := perform(router, http.MethodGet, "/api/schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)

	names := make([]string, 0, len(body.Data))
	for _, st := range body.Data {
		names = append(names, st.Name)
	}
	assert.Contains(t, names, "post")
	assert.Contains(t, names, "page")
	assert.Contains(t, names, "author")
	assert.Contains(t, names, "category")
}

func TestGetSchemaByName(t *testing.T) {
	router := newTestRouter(viewerPrincipal())
	router.GET("/api/schemas/:type", GetSchema)

	rec := perform(router, http.MethodGet, "/api/schemas/post", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(router, http.MethodGet, "/api/schemas/banana", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
