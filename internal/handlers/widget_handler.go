package handlers

import (
	"net/http"

	"gabaychat/internal/config"
	"gabaychat/internal/middleware"
	"gabaychat/internal/observability"
	"gabaychat/internal/services"
	contextutils "gabaychat/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// SendMessageRequest is the request body for sending a chat message.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// WidgetHandler handles chat widget HTTP requests. All state is scoped to
// the cookie session.
type WidgetHandler struct {
	widgetService services.WidgetServiceInterface
	cfg           *config.Config
	logger        *observability.Logger
}

// NewWidgetHandler creates a new WidgetHandler instance
func NewWidgetHandler(widgetService services.WidgetServiceInterface, cfg *config.Config, logger *observability.Logger) *WidgetHandler {
	return &WidgetHandler{
		widgetService: widgetService,
		cfg:           cfg,
		logger:        logger,
	}
}

// GetWidget returns the full widget state for the session.
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_widget")
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	c.JSON(http.StatusOK, h.widgetService.Snapshot(sessionID))
}

// Toggle flips the widget panel open or closed.
func (h *WidgetHandler) Toggle(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "toggle_widget")
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	open := h.widgetService.Toggle(sessionID)
	c.JSON(http.StatusOK, gin.H{"open": open})
}

// SendMessage sends a chat message. The response carries the reconciled
// message plus the refresh delays the frontend should honor before
// re-fetching the list.
func (h *WidgetHandler) SendMessage(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "send_message")
	defer span.End()

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn, "Invalid request format", err.Error()))
		return
	}

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	lang := GetSessionLanguage(c, h.cfg)
	span.SetAttributes(
		attribute.String("widget.language", lang),
		attribute.Int("widget.text_length", len(req.Text)),
	)

	msg, err := h.widgetService.Send(ctx, sessionID, req.Text, lang)
	if err != nil {
		h.logger.Warn(ctx, "Widget send failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        msg,
		"refresh_delays": h.cfg.Widget.RefreshDelays,
	})
}

// ListMessages refreshes the message list from the upstream backend merged
// with local state.
func (h *WidgetHandler) ListMessages(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_messages")
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	lang := GetSessionLanguage(c, h.cfg)

	views, err := h.widgetService.Refresh(ctx, sessionID, lang)
	if err != nil {
		h.logger.Warn(ctx, "Widget refresh failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": views, "language": lang})
}

// ToggleOriginal flips a message between original and translated display.
func (h *WidgetHandler) ToggleOriginal(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "toggle_original",
		observability.AttributeMessageID(c.Param("id")),
	)
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	show, err := h.widgetService.ToggleOriginal(sessionID, c.Param("id"))
	if err != nil {
		h.logger.Debug(ctx, "Toggle original failed", map[string]interface{}{
			"session_id": sessionID,
			"message_id": c.Param("id"),
		})
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "show_original": show})
}

// DeleteMessage removes a message from the session's local list.
func (h *WidgetHandler) DeleteMessage(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_message",
		observability.AttributeMessageID(c.Param("id")),
	)
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	if err := h.widgetService.Delete(sessionID, c.Param("id")); err != nil {
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// Clear empties the session's chat history.
func (h *WidgetHandler) Clear(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "clear_widget")
	defer span.End()

	sessionID := EnsureSessionID(c)
	_ = persistSession(c)
	h.widgetService.Clear(sessionID)
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
