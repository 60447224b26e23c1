// Package services implements the session-scoped chat widget and settings
// page state machines.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gabaychat/internal/config"
	"gabaychat/internal/models"
	"gabaychat/internal/observability"
	"gabaychat/internal/serviceinterfaces"
	contextutils "gabaychat/internal/utils"
)

// WidgetServiceInterface defines the interface for the chat widget service
type WidgetServiceInterface interface {
	Snapshot(sessionID string) *models.WidgetSnapshot
	Toggle(sessionID string) bool
	Send(ctx context.Context, sessionID, text, lang string) (*models.Message, error)
	Refresh(ctx context.Context, sessionID, lang string) ([]models.MessageView, error)
	ToggleOriginal(sessionID, messageID string) (bool, error)
	Delete(sessionID, messageID string) error
	Clear(sessionID string)
}

// widgetSession holds one session's widget state. All fields are guarded by
// the service mutex; the live-translation cache and suppress set never leave
// memory.
type widgetSession struct {
	open             bool
	sending          bool
	lastError        string
	messages         []models.Message
	liveTranslations map[string]string
	suppressed       map[string]bool
}

// WidgetService owns per-session chat widget state: the optimistic message
// list, the live-translation cache, per-message display toggles, and the
// suppress set that keeps locally deleted messages from being resurrected by
// a refresh.
type WidgetService struct {
	cfg    *config.Config
	client serviceinterfaces.TranslationClient
	logger *observability.Logger

	mu       sync.Mutex
	sessions map[string]*widgetSession
}

// NewWidgetService creates a new widget service backed by the given upstream client.
func NewWidgetService(cfg *config.Config, client serviceinterfaces.TranslationClient, logger *observability.Logger) *WidgetService {
	return &WidgetService{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		sessions: make(map[string]*widgetSession),
	}
}

// session returns the state for a session id, creating it on first use.
// Callers must hold s.mu.
func (s *WidgetService) session(sessionID string) *widgetSession {
	ws, ok := s.sessions[sessionID]
	if !ok {
		ws = &widgetSession{
			liveTranslations: make(map[string]string),
			suppressed:       make(map[string]bool),
		}
		s.sessions[sessionID] = ws
	}
	return ws
}

// Snapshot returns the current widget state for rendering.
func (s *WidgetService) Snapshot(sessionID string) *models.WidgetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.session(sessionID)
	return &models.WidgetSnapshot{
		Open:          ws.open,
		Sending:       ws.sending,
		Error:         ws.lastError,
		Messages:      s.viewsLocked(ws),
		RefreshDelays: s.cfg.Widget.RefreshDelays,
	}
}

// viewsLocked renders message views with display text resolved against the
// live-translation cache. Callers must hold s.mu.
func (s *WidgetService) viewsLocked(ws *widgetSession) []models.MessageView {
	views := make([]models.MessageView, 0, len(ws.messages))
	for i := range ws.messages {
		msg := ws.messages[i]
		views = append(views, models.MessageView{
			Message:     msg,
			DisplayText: msg.DisplayText(ws.liveTranslations[msg.ID]),
		})
	}
	return views
}

// Toggle flips the panel open/closed and returns the new state. Pure UI
// state, no side effects.
func (s *WidgetService) Toggle(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.session(sessionID)
	ws.open = !ws.open
	return ws.open
}

// Send appends an optimistic pending message, saves it with the backend, and
// reconciles the optimistic entry with the server-assigned id and
// translation. Whitespace-only input is rejected before any state change. A
// second send while one is in flight is refused. On failure the optimistic
// entry stays visible and the error is recorded for display.
func (s *WidgetService) Send(ctx context.Context, sessionID, text, lang string) (result *models.Message, err error) {
	ctx, span := observability.TraceWidgetFunction(ctx, "send",
		observability.AttributeSessionID(sessionID),
		observability.AttributeLanguage(lang),
	)
	defer observability.FinishSpan(span, &err)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Message cannot be empty", "")
	}
	if max := s.cfg.Widget.MaxMessageLength; max > 0 && len(trimmed) > max {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			fmt.Sprintf("Message cannot exceed %d characters", max), "")
	}

	// Optimistic append under lock; at most one send is in flight per session.
	s.mu.Lock()
	ws := s.session(sessionID)
	if ws.sending {
		s.mu.Unlock()
		return nil, contextutils.NewAppError(contextutils.ErrorCodeConflict, contextutils.SeverityWarn,
			"A message is already being sent", "")
	}
	optimisticID := fmt.Sprintf("local-%d", time.Now().UnixNano())
	optimistic := models.Message{
		ID:        optimisticID,
		Original:  trimmed,
		Timestamp: time.Now().UTC(),
		Pending:   true,
	}
	ws.messages = append(ws.messages, optimistic)
	ws.sending = true
	ws.lastError = ""
	s.mu.Unlock()

	s.logger.Info(ctx, "Sending message", map[string]interface{}{
		"session_id":  sessionID,
		"message_id":  optimisticID,
		"text_length": len(trimmed),
	})

	saved, saveErr := s.client.SaveMessage(ctx, trimmed)

	// A live translation fills the display gap until the server confirms one.
	var live string
	if saveErr == nil && lang != "" && !hasDistinctTranslation(saved, trimmed) {
		if translated, terr := s.client.Translate(ctx, trimmed, "", lang); terr == nil && translated != trimmed {
			live = translated
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws = s.session(sessionID)
	ws.sending = false

	idx := indexOfMessage(ws.messages, optimisticID)
	if saveErr != nil {
		ws.lastError = saveErr.Error()
		s.logger.Warn(ctx, "Message save failed", map[string]interface{}{
			"session_id": sessionID,
			"message_id": optimisticID,
			"error":      saveErr.Error(),
		})
		if idx >= 0 {
			msg := ws.messages[idx]
			return &msg, saveErr
		}
		return nil, saveErr
	}

	if idx < 0 {
		// The optimistic entry was cleared or deleted while the save was in
		// flight; nothing left to reconcile.
		return nil, nil
	}

	msg := &ws.messages[idx]
	msg.Pending = false
	if saved != nil {
		if saved.ID != "" && indexOfMessage(ws.messages, saved.ID) < 0 {
			delete(ws.suppressed, saved.ID)
			if live != "" {
				ws.liveTranslations[saved.ID] = live
			}
			delete(ws.liveTranslations, msg.ID)
			msg.ID = saved.ID
		}
		if saved.Translation != nil && *saved.Translation != "" {
			translation := *saved.Translation
			msg.Translation = &translation
		}
		if saved.Timestamp != "" {
			if ts, err := contextutils.ParseMessageTimestamp(saved.Timestamp); err == nil {
				msg.Timestamp = ts
			}
		}
	}
	if live != "" {
		ws.liveTranslations[msg.ID] = live
	}

	s.logger.Info(ctx, "Message reconciled", map[string]interface{}{
		"session_id": sessionID,
		"message_id": msg.ID,
	})

	reconciled := *msg
	return &reconciled, nil
}

// hasDistinctTranslation reports whether the saved record carries a
// translation that actually differs from the original text.
func hasDistinctTranslation(saved *models.SavedMessage, original string) bool {
	return saved != nil && saved.Translation != nil && *saved.Translation != "" && *saved.Translation != original
}

// Refresh replaces the list with the backend's view, merged by id: display
// toggles and live translations carry over for matching ids, suppressed
// (locally deleted) ids stay hidden, and local pending entries without a
// server counterpart are never dropped.
func (s *WidgetService) Refresh(ctx context.Context, sessionID, lang string) (result []models.MessageView, err error) {
	ctx, span := observability.TraceWidgetFunction(ctx, "refresh",
		observability.AttributeSessionID(sessionID),
		observability.AttributeLanguage(lang),
	)
	defer observability.FinishSpan(span, &err)

	serverMessages, err := s.client.Messages(ctx, lang)

	s.mu.Lock()
	defer s.mu.Unlock()
	ws := s.session(sessionID)

	if err != nil {
		ws.lastError = err.Error()
		return nil, err
	}
	ws.lastError = ""

	local := make(map[string]models.Message, len(ws.messages))
	for _, msg := range ws.messages {
		local[msg.ID] = msg
	}

	merged := make([]models.Message, 0, len(serverMessages)+len(ws.messages))
	seen := make(map[string]bool, len(serverMessages))
	for _, sm := range serverMessages {
		if ws.suppressed[sm.ID] {
			continue
		}
		seen[sm.ID] = true
		if prev, ok := local[sm.ID]; ok {
			sm.ShowOriginal = prev.ShowOriginal
			// Keep a previously confirmed translation if the server entry
			// lost it.
			if sm.Translation == nil && prev.Translation != nil {
				sm.Translation = prev.Translation
			}
		}
		merged = append(merged, sm)
	}

	// Local entries with no server counterpart survive the merge: pending
	// sends have not landed yet, reconciled ones may lag list consistency.
	for _, msg := range ws.messages {
		if !seen[msg.ID] {
			merged = append(merged, msg)
		}
	}

	ws.messages = merged

	s.logger.Debug(ctx, "Widget refreshed", map[string]interface{}{
		"session_id": sessionID,
		"language":   lang,
		"count":      len(merged),
	})

	return s.viewsLocked(ws), nil
}

// ToggleOriginal flips a message between original and translated display and
// returns the new show-original state.
func (s *WidgetService) ToggleOriginal(sessionID, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.session(sessionID)
	idx := indexOfMessage(ws.messages, messageID)
	if idx < 0 {
		return false, contextutils.WrapError(contextutils.ErrRecordNotFound, "message not found: "+messageID)
	}
	ws.messages[idx].ShowOriginal = !ws.messages[idx].ShowOriginal
	return ws.messages[idx].ShowOriginal, nil
}

// Delete removes a message from the local list only; no server-side delete
// is issued. The id joins the suppress set so a later refresh cannot
// resurrect it.
func (s *WidgetService) Delete(sessionID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.session(sessionID)
	idx := indexOfMessage(ws.messages, messageID)
	if idx < 0 {
		return contextutils.WrapError(contextutils.ErrRecordNotFound, "message not found: "+messageID)
	}
	ws.messages = append(ws.messages[:idx], ws.messages[idx+1:]...)
	ws.suppressed[messageID] = true
	delete(ws.liveTranslations, messageID)
	return nil
}

// Clear resets the message list, the suppress set, and the live-translation
// cache. The panel open state is untouched.
func (s *WidgetService) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.session(sessionID)
	ws.messages = nil
	ws.liveTranslations = make(map[string]string)
	ws.suppressed = make(map[string]bool)
	ws.lastError = ""
}

// indexOfMessage returns the index of the message with the given id, or -1.
func indexOfMessage(messages []models.Message, id string) int {
	for i := range messages {
		if messages[i].ID == id {
			return i
		}
	}
	return -1
}
