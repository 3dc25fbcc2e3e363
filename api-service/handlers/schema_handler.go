package handlers

import (
	"net/http"

	"forgecms-backend/shared/schema"

	"github.com/gin-gonic/gin"
)

// GetSchemas lists every registered schema type
// @Summary List schema types
// @Description List all registered content schema types with their field definitions
// @Tags schemas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of schema types"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /schemas [get]
func GetSchemas(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schema.All(),
	})
}

// GetSchema returns one schema type by name
// @Summary Get schema type by name
// @Tags schemas
// @Accept json
// @Produce json
// @Param type path string true "Schema type name"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Schema type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Schema type not found"
// @Router /schemas/{type} [get]
func GetSchema(ctx *gin.Context) {
	name := ctx.Param("type")

	schemaType, ok := schema.GetSchemaTypeByName(name)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Schema type not found",
			"message": "No schema type registered with name " + name,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schemaType,
	})
}
