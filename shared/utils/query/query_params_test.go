package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForURL(t *testing.T, url string, filterKeys ...string) ListParams {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", url, nil)

	return ParseListParams(c, filterKeys...)
}

func TestParseListParamsDefaults(t *testing.T) {
	params := paramsForURL(t, "/api/documents")

	assert.Equal(t, DefaultLimit, params.Limit)
	assert.Equal(t, 0, params.Offset)
	assert.Empty(t, params.Search)
	assert.Empty(t, params.Filter)
}

func TestParseListParamsClampsLimit(t *testing.T) {
	params := paramsForURL(t, "/api/documents?limit=5000&offset=-3")

	assert.Equal(t, MaxLimit, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestParseListParamsFilters(t *testing.T) {
	params := paramsForURL(t, "/api/documents?type=post&status=draft&bogus=x", "type", "status")

	assert.Equal(t, "post", params.Filter["type"])
	assert.Equal(t, "draft", params.Filter["status"])
	assert.NotContains(t, params.Filter, "bogus")
}

func TestParseDepth(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"-2", 0},
		{"0", 0},
		{"3", 3},
		{"5", 5},
		{"17", 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDepth(tt.raw), "depth for %q", tt.raw)
	}
}

func TestBuildPaginationResponse(t *testing.T) {
	params := ListParams{Limit: 20, Offset: 0}
	resp := BuildPaginationResponse(params, 45)
	assert.True(t, resp.HasNext)

	params.Offset = 40
	resp = BuildPaginationResponse(params, 45)
	assert.False(t, resp.HasNext)
	assert.Equal(t, int64(45), resp.Total)
}
