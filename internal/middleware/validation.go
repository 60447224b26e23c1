package middleware

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gabaychat/internal/observability"
	contextutils "gabaychat/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaValidator validates request bodies against embedded JSON schemas.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaValidator loads every schema under schemas/. The schema name is
// the file name without extension.
func NewSchemaValidator() (result0 *SchemaValidator, err error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to read embedded schemas")
	}

	sv := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to read schema %s", entry.Name())
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to compile schema %s", entry.Name())
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		sv.schemas[name] = schema
	}
	return sv, nil
}

// ValidateData validates data against the named schema.
func (sv *SchemaValidator) ValidateData(data interface{}, schemaName string) error {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return contextutils.ErrorWithContextf("schema %s not found", schemaName)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return contextutils.WrapError(err, "failed to marshal data")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return contextutils.WrapError(err, "validation error")
	}

	if !result.Valid() {
		var validationErrors []string
		for _, validationErr := range result.Errors() {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", validationErr.Field(), validationErr.Description()))
		}
		return contextutils.NewAppError(contextutils.ErrorCodeValidationFailed, contextutils.SeverityWarn,
			"Request validation failed", strings.Join(validationErrors, "; "))
	}

	return nil
}

// RequestValidation returns middleware that validates the JSON request body
// against the named schema before the handler runs. The body is restored so
// handlers can bind it again.
func RequestValidation(validator *SchemaValidator, logger *observability.Logger, schemaName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "request_validation",
			observability.AttributeEndpoint(c.Request.URL.Path),
		)
		defer span.End()

		body, err := c.GetRawData()
		if err != nil {
			HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
				contextutils.SeverityWarn, "Failed to read request body", err.Error()))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		var requestData interface{}
		if err := json.Unmarshal(body, &requestData); err != nil {
			HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeInvalidFormat,
				contextutils.SeverityWarn, "Request body is not valid JSON", err.Error()))
			c.Abort()
			return
		}

		if err := validator.ValidateData(requestData, schemaName); err != nil {
			logger.Warn(ctx, "Request validation failed", map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"schema": schemaName,
				"error":  err.Error(),
			})
			HandleAppError(c, err)
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		c.Next()
	}
}

// NoRouteHandler returns the handler for undocumented endpoints.
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Endpoint not found",
			"message": "The requested endpoint does not exist",
		})
	}
}
