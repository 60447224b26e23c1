// Package handlers contains the Gin HTTP handlers for the chat widget
// backend.
package handlers

import (
	"net/http"

	"gabaychat/internal/config"
	"gabaychat/internal/middleware"
	"gabaychat/internal/observability"
	"gabaychat/internal/serviceinterfaces"
	contextutils "gabaychat/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// TranslateRequest is the request body for a direct translation call.
type TranslateRequest struct {
	Text   string `json:"text" binding:"required"`
	Target string `json:"target" binding:"required,min=2,max=8"`
	Source string `json:"source" binding:"omitempty,max=8"`
}

// TranslationHandler handles translation related HTTP requests
type TranslationHandler struct {
	client serviceinterfaces.TranslationClient
	cfg    *config.Config
	logger *observability.Logger
}

// NewTranslationHandler creates a new TranslationHandler instance
func NewTranslationHandler(client serviceinterfaces.TranslationClient, cfg *config.Config, logger *observability.Logger) *TranslationHandler {
	return &TranslationHandler{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Translate handles direct text translation requests
func (h *TranslationHandler) Translate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "translate")
	defer span.End()

	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid translation request format", map[string]interface{}{"error": err.Error()})
		middleware.HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn, "Invalid request format", err.Error()))
		return
	}

	span.SetAttributes(
		attribute.String("translation.target_language", req.Target),
		attribute.String("translation.source_language", req.Source),
		attribute.Int("translation.text_length", len(req.Text)),
	)

	translated, err := h.client.Translate(ctx, req.Text, req.Source, req.Target)
	if err != nil {
		h.logger.Error(ctx, "Translation failed", err, map[string]interface{}{"target": req.Target})
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original":    req.Text,
		"translated":  translated,
		"target_lang": req.Target,
	})
}

// Languages returns the upstream backend's supported language codes.
func (h *TranslationHandler) Languages(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "languages")
	defer span.End()

	languages, err := h.client.SupportedLanguages(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to fetch supported languages", err)
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"languages": languages})
}

// TestConnection probes the upstream backend and reports the result. The
// probe outcome is always a 200; failure is data, not an HTTP error.
func (h *TranslationHandler) TestConnection(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "test_connection")
	defer span.End()

	status := h.client.TestConnection(ctx)
	c.JSON(http.StatusOK, status)
}
