// Package client implements the typed HTTP client for the upstream
// translation/message backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gabaychat/internal/config"
	"gabaychat/internal/models"
	"gabaychat/internal/observability"
	contextutils "gabaychat/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// languageAliases maps legacy two-letter codes to the codes the backend
// expects. The backend speaks "fil" for Filipino, not "tl".
var languageAliases = map[string]string{
	"tl": "fil",
}

// NormalizeLanguageCode resolves known aliases to backend language codes.
// Unknown codes pass through unchanged.
func NormalizeLanguageCode(lang string) string {
	if normalized, ok := languageAliases[lang]; ok {
		return normalized
	}
	return lang
}

// Client talks to the upstream translation/message backend.
type Client struct {
	upstream   *config.UpstreamConfig
	httpClient *http.Client
	logger     *observability.Logger
}

// New creates a client for the configured upstream backend with an
// OpenTelemetry-instrumented transport.
func New(cfg *config.Config, logger *observability.Logger) *Client {
	return &Client{
		upstream: &cfg.Upstream,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Upstream.Timeout,
		},
		logger: logger,
	}
}

// translateRequest is the wire format of a translate call. Only the text and
// target language are sent; the backend detects the source itself.
type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

// translateResponse is the wire format of a translate result.
type translateResponse struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	TargetLang string `json:"target_lang"`
	Error      string `json:"error"`
}

// languagesResponse is the wire format of the supported-languages listing.
type languagesResponse struct {
	Languages []string `json:"languages"`
}

// rootResponse is the wire format of the backend root probe.
type rootResponse struct {
	Message string `json:"message"`
}

// saveMessageResponse is the wire format of a successful save.
type saveMessageResponse struct {
	Message models.SavedMessage `json:"message"`
}

// wireMessage is one stored message as the backend lists it.
type wireMessage struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Translation *string `json:"translation"`
	Timestamp   string  `json:"timestamp"`
}

// messagesResponse is the wire format of a message listing.
type messagesResponse struct {
	Messages []wireMessage `json:"messages"`
}

// Translate translates text into the target language. Equal source and
// target codes (after alias normalization) short-circuit to the unchanged
// text without touching the network. A 2xx body carrying an error field
// fails the call; a 2xx body missing the translated field falls back to the
// original text.
func (c *Client) Translate(ctx context.Context, text, fromLang, toLang string) (result string, err error) {
	from := NormalizeLanguageCode(fromLang)
	target := NormalizeLanguageCode(toLang)

	if from == target {
		return text, nil
	}

	ctx, span := observability.TraceClientFunction(ctx, "translate",
		observability.AttributeSourceLanguage(from),
		observability.AttributeTargetLanguage(target),
		observability.AttributeTextLength(len(text)),
	)
	defer observability.FinishSpan(span, &err)

	c.logger.Debug(ctx, "Translating text", map[string]interface{}{
		"target":      target,
		"text_length": len(text),
	})

	body, status, err := c.postJSON(ctx, c.upstream.Endpoints.Translate, translateRequest{
		Text:   text,
		Target: target,
	})
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", contextutils.NewAppError(contextutils.ErrorCodeUpstreamStatus, contextutils.SeverityError,
			fmt.Sprintf("translation request failed: %d - %s", status, string(body)), "")
	}

	var resp translateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", contextutils.WrapError(err, "failed to decode translation response")
	}

	// The backend reports unsupported pairs inside a 200 body.
	if resp.Error != "" {
		return "", contextutils.NewAppError(contextutils.ErrorCodeTranslationFailed, contextutils.SeverityError, resp.Error, "")
	}

	c.logger.Debug(ctx, "Translation completed", map[string]interface{}{
		"target":            target,
		"translated_length": len(resp.Translated),
	})

	if resp.Translated == "" {
		return text, nil
	}
	return resp.Translated, nil
}

// SupportedLanguages returns the backend's supported language codes. A body
// without a languages field yields an empty slice, not an error.
func (c *Client) SupportedLanguages(ctx context.Context) (result []string, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "supported_languages")
	defer observability.FinishSpan(span, &err)

	c.logger.Debug(ctx, "Fetching supported languages", nil)

	body, status, err := c.getJSON(ctx, c.upstream.Endpoints.Languages)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeUpstreamStatus, contextutils.SeverityError,
			fmt.Sprintf("languages request failed: %d", status), "")
	}

	var resp languagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, contextutils.WrapError(err, "failed to decode languages response")
	}
	if resp.Languages == nil {
		return []string{}, nil
	}

	c.logger.Debug(ctx, "Fetched supported languages", map[string]interface{}{"count": len(resp.Languages)})
	return resp.Languages, nil
}

// IsAvailable probes the backend root. All failures read as false; this
// never returns an error.
func (c *Client) IsAvailable(ctx context.Context) bool {
	c.logger.Debug(ctx, "Probing backend availability", map[string]interface{}{"base_url": c.upstream.BaseURL})

	_, status, err := c.getJSON(ctx, c.upstream.Endpoints.Root)
	if err != nil {
		c.logger.Debug(ctx, "Backend availability probe failed", map[string]interface{}{"error": err.Error()})
		return false
	}

	c.logger.Debug(ctx, "Backend availability probe completed", map[string]interface{}{"status": status})
	return status >= 200 && status < 300
}

// TestConnection probes the backend root and returns a structured result for
// display instead of an error.
func (c *Client) TestConnection(ctx context.Context) *models.ConnectionStatus {
	ctx, span := observability.TraceClientFunction(ctx, "test_connection")
	defer span.End()

	c.logger.Info(ctx, "Testing backend connection", map[string]interface{}{"base_url": c.upstream.BaseURL})

	body, status, err := c.getJSON(ctx, c.upstream.Endpoints.Root)
	if err != nil {
		c.logger.Warn(ctx, "Backend connection test failed", map[string]interface{}{"error": err.Error()})
		return &models.ConnectionStatus{Success: false, Error: err.Error()}
	}
	if status < 200 || status >= 300 {
		return &models.ConnectionStatus{
			Success: false,
			Status:  status,
			Error:   fmt.Sprintf("unexpected status %d", status),
		}
	}

	var resp rootResponse
	// A non-JSON probe body still counts as reachable.
	_ = json.Unmarshal(body, &resp)

	c.logger.Info(ctx, "Backend connection test succeeded", map[string]interface{}{"status": status})
	return &models.ConnectionStatus{Success: true, Status: status, Message: resp.Message}
}

// SaveMessage persists a message with the backend and returns its record.
func (c *Client) SaveMessage(ctx context.Context, text string) (result *models.SavedMessage, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "save_message",
		observability.AttributeTextLength(len(text)),
	)
	defer observability.FinishSpan(span, &err)

	c.logger.Debug(ctx, "Saving message", map[string]interface{}{"text_length": len(text)})

	body, status, err := c.postJSON(ctx, c.upstream.Endpoints.Send, map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeUpstreamStatus, contextutils.SeverityError,
			fmt.Sprintf("save message failed: %d - %s", status, string(body)), "")
	}

	var resp saveMessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, contextutils.WrapError(err, "failed to decode save response")
	}

	c.logger.Debug(ctx, "Message saved", map[string]interface{}{"message_id": resp.Message.ID})
	return &resp.Message, nil
}

// Messages lists stored messages filtered by language. A body without a
// messages field yields an empty slice, not an error.
func (c *Client) Messages(ctx context.Context, lang string) (result []models.Message, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "messages",
		observability.AttributeLanguage(lang),
	)
	defer observability.FinishSpan(span, &err)

	c.logger.Debug(ctx, "Fetching messages", map[string]interface{}{"language": lang})

	path := c.upstream.Endpoints.Messages + "?lang=" + url.QueryEscape(lang)
	body, status, err := c.getJSON(ctx, path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeUpstreamStatus, contextutils.SeverityError,
			fmt.Sprintf("messages request failed: %d", status), "")
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, contextutils.WrapError(err, "failed to decode messages response")
	}

	messages := make([]models.Message, 0, len(resp.Messages))
	for _, wm := range resp.Messages {
		msg := models.Message{
			ID:          wm.ID,
			Original:    wm.Text,
			Translation: wm.Translation,
			Pending:     false,
		}
		if ts, err := contextutils.ParseMessageTimestamp(wm.Timestamp); err == nil {
			msg.Timestamp = ts
		}
		messages = append(messages, msg)
	}

	c.logger.Debug(ctx, "Fetched messages", map[string]interface{}{"language": lang, "count": len(messages)})
	return messages, nil
}

// postJSON issues a POST with a JSON body and returns the response body and status.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) (body []byte, status int, err error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.upstream.URL(path), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// getJSON issues a GET and returns the response body and status.
func (c *Client) getJSON(ctx context.Context, path string) (body []byte, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.upstream.URL(path), nil)
	if err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to create request")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (body []byte, status int, err error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeUpstreamUnavailable,
			contextutils.SeverityError, "backend request failed", err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, contextutils.WrapError(err, "failed to read response body")
	}
	return body, resp.StatusCode, nil
}
