package handlers

import (
	"net/http"

	"gabaychat/internal/config"
	"gabaychat/internal/i18n"
	"gabaychat/internal/middleware"
	"gabaychat/internal/observability"
	"gabaychat/internal/services"
	contextutils "gabaychat/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// SettingsSelectRequest is the request body for activating a settings item.
type SettingsSelectRequest struct {
	Group string `json:"group" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// LanguageRequest is the request body for setting the session language.
type LanguageRequest struct {
	Language string `json:"language" binding:"required,min=2,max=8"`
}

// SettingsHandler handles the settings page HTTP requests.
type SettingsHandler struct {
	settingsService services.SettingsServiceInterface
	translator      *i18n.Translator
	cfg             *config.Config
	logger          *observability.Logger
}

// NewSettingsHandler creates a new SettingsHandler instance
func NewSettingsHandler(settingsService services.SettingsServiceInterface, translator *i18n.Translator, cfg *config.Config, logger *observability.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		translator:      translator,
		cfg:             cfg,
		logger:          logger,
	}
}

// GetSettings returns all selection groups for the session.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_settings")
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	c.JSON(http.StatusOK, gin.H{
		"groups":   h.settingsService.Groups(sessionID),
		"language": GetSessionLanguage(c, h.cfg),
	})
}

// Select activates one item in a single-select group. A language selection
// also becomes the session's translation language.
func (h *SettingsHandler) Select(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "select_setting")
	defer span.End()

	var req SettingsSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn, "Invalid request format", err.Error()))
		return
	}

	sessionID := EnsureSessionID(c)
	span.SetAttributes(
		attribute.String("settings.group", req.Group),
		attribute.String("settings.value", req.Value),
	)

	group, err := h.settingsService.Select(sessionID, req.Group, req.Value)
	if err != nil {
		middleware.HandleAppError(c, err)
		return
	}

	if group.Name == services.GroupLanguages {
		SetSessionLanguage(c, req.Value)
	}
	if err := persistSession(c); err != nil {
		h.logger.Warn(ctx, "Failed to persist session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	h.logger.Info(ctx, "Settings item selected", map[string]interface{}{
		"session_id": sessionID,
		"group":      group.Name,
		"value":      req.Value,
	})

	c.JSON(http.StatusOK, group)
}

// GetLanguage returns the session's translation language and the selectable codes.
func (h *SettingsHandler) GetLanguage(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_language")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"language":  GetSessionLanguage(c, h.cfg),
		"languages": h.cfg.GetLanguages(),
	})
}

// SetLanguage sets the session's translation language directly, keeping the
// settings language group in sync when the code is one of its items.
func (h *SettingsHandler) SetLanguage(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "set_language")
	defer span.End()

	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn, "Invalid request format", err.Error()))
		return
	}

	sessionID := EnsureSessionID(c)
	span.SetAttributes(observability.AttributeLanguage(req.Language))

	SetSessionLanguage(c, req.Language)
	if err := persistSession(c); err != nil {
		middleware.HandleAppError(c, contextutils.WrapError(err, "failed to persist session language"))
		return
	}

	// Best effort: codes outside the configured group stay session-only.
	if _, err := h.settingsService.Select(sessionID, services.GroupLanguages, req.Language); err != nil {
		h.logger.Debug(ctx, "Language not in settings group", map[string]interface{}{
			"language": req.Language,
		})
	}

	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}

// GetStrings returns the localized UI strings for the session language.
func (h *SettingsHandler) GetStrings(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_strings")
	defer span.End()

	lang := GetSessionLanguage(c, h.cfg)
	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"strings":  h.translator.Strings(lang),
	})
}
