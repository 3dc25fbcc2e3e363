package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxDepth bounds reference expansion
	MaxDepth = 5
)

// ListParams represents standard listing parameters
type ListParams struct {
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Search string            `json:"search"`
	Filter map[string]string `json:"filter"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

// ParseListParams extracts limit/offset/search from the request, with
// filter values collected from the named query keys
func ParseListParams(c *gin.Context, filterKeys ...string) ListParams {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := make(map[string]string)
	for _, key := range filterKeys {
		if v := c.Query(key); v != "" {
			filter[key] = v
		}
	}

	return ListParams{
		Limit:  limit,
		Offset: offset,
		Search: c.Query("search"),
		Filter: filter,
	}
}

// ParseDepth parses the reference-expansion depth query parameter and
// clamps it to [0, MaxDepth]. Non-numeric input falls back to 0.
func ParseDepth(raw string) int {
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return ClampDepth(depth)
}

// ClampDepth clamps a depth value to [0, MaxDepth]
func ClampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}

// ApplyFilters applies exact-match filters to a GORM query, restricted to
// the allowed column mapping
func ApplyFilters(query *gorm.DB, filters map[string]string, allowedFields map[string]string) *gorm.DB {
	for field, value := range filters {
		if dbField, allowed := allowedFields[field]; allowed && value != "" {
			query = query.Where(fmt.Sprintf("%s = ?", dbField), value)
		}
	}
	return query
}

// ApplySearch applies a case-insensitive search across the given fields
func ApplySearch(query *gorm.DB, search string, searchFields []string) *gorm.DB {
	if search == "" || len(searchFields) == 0 {
		return query
	}

	conditions := make([]string, len(searchFields))
	args := make([]interface{}, len(searchFields))

	for i, field := range searchFields {
		conditions[i] = fmt.Sprintf("%s ILIKE ?", field)
		args[i] = "%" + search + "%"
	}

	whereClause := strings.Join(conditions, " OR ")
	return query.Where(whereClause, args...)
}

// ApplyPagination applies limit/offset to a GORM query
func ApplyPagination(query *gorm.DB, params ListParams) *gorm.DB {
	return query.Offset(params.Offset).Limit(params.Limit)
}

// BuildPaginationResponse creates pagination metadata
func BuildPaginationResponse(params ListParams, total int64) PaginationResponse {
	return PaginationResponse{
		Limit:   params.Limit,
		Offset:  params.Offset,
		Total:   total,
		HasNext: int64(params.Offset+params.Limit) < total,
	}
}
