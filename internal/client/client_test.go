package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gabaychat/internal/config"
	"gabaychat/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Upstream.BaseURL = baseURL
	cfg.Upstream.Endpoints = config.EndpointsConfig{
		Translate: "/translate/",
		Languages: "/languages",
		Root:      "/",
		Send:      "/send",
		Messages:  "/messages",
	}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return New(cfg, logger)
}

func TestTranslateSameLanguageShortCircuits(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	for _, lang := range []string{"en", "fil", "ja", "zh"} {
		result, err := c.Translate(context.Background(), "hello", lang, lang)
		require.NoError(t, err)
		assert.Equal(t, "hello", result)
	}

	// "tl" and "fil" are the same language after alias normalization.
	result, err := c.Translate(context.Background(), "kumusta", "tl", "fil")
	require.NoError(t, err)
	assert.Equal(t, "kumusta", result)

	assert.Equal(t, int64(0), atomic.LoadInt64(&calls), "no network calls expected")
}

func TestTranslateNormalizesTagalogAlias(t *testing.T) {
	var captured struct {
		Text   string `json:"text"`
		Target string `json:"target"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"translated": "kumusta"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Translate(context.Background(), "hello", "en", "tl")
	require.NoError(t, err)
	assert.Equal(t, "kumusta", result)
	assert.Equal(t, "fil", captured.Target)
	assert.Equal(t, "hello", captured.Text)
}

func TestTranslateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/translate/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"original":    "hello",
			"translated":  "hola",
			"target_lang": "es",
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Translate(context.Background(), "hello", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "hola", result)
}

func TestTranslateErrorFieldInSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unsupported language pair: en-xx"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Translate(context.Background(), "hello", "en", "xx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported language pair")
}

func TestTranslateNon2xxStatusInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model load failed", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Translate(context.Background(), "hello", "en", "es")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model load failed")
}

func TestTranslateMissingTranslatedFieldFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Translate(context.Background(), "hello", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestSupportedLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/languages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string][]string{
			"languages": {"en", "fil", "ceb", "ilo", "pag", "zh", "ja", "ko"},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	langs, err := c.SupportedLanguages(context.Background())
	require.NoError(t, err)
	assert.Len(t, langs, 8)
	assert.Contains(t, langs, "fil")
}

func TestSupportedLanguagesMissingFieldReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	langs, err := c.SupportedLanguages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, langs)
	assert.NotNil(t, langs)
}

func TestSupportedLanguagesNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.SupportedLanguages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Translation microservice running."})
	}))

	c := newTestClient(server.URL)
	assert.True(t, c.IsAvailable(context.Background()))

	// A dead backend reads as unavailable, never as an error.
	server.Close()
	assert.False(t, c.IsAvailable(context.Background()))
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Translation microservice running."})
	}))

	c := newTestClient(server.URL)

	status := c.TestConnection(context.Background())
	require.True(t, status.Success)
	assert.Equal(t, http.StatusOK, status.Status)
	assert.Equal(t, "Translation microservice running.", status.Message)

	server.Close()
	status = c.TestConnection(context.Background())
	require.False(t, status.Success)
	assert.NotEmpty(t, status.Error)
}

func TestSaveMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/send", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])

		translation := "kumusta"
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]interface{}{
				"id":          "srv-42",
				"text":        "hello",
				"translation": translation,
				"timestamp":   "2025-02-10T08:30:00Z",
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	saved, err := c.SaveMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "srv-42", saved.ID)
	require.NotNil(t, saved.Translation)
	assert.Equal(t, "kumusta", *saved.Translation)
}

func TestSaveMessageNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage failure", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.SaveMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "fil", r.URL.Query().Get("lang"))

		translation := "kumusta"
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]interface{}{
				{"id": "m1", "text": "hello", "translation": translation, "timestamp": "2025-02-10T08:30:00Z"},
				{"id": "m2", "text": "goodbye", "timestamp": "2025-02-10T08:31:00Z"},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	messages, err := c.Messages(context.Background(), "fil")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "hello", messages[0].Original)
	require.NotNil(t, messages[0].Translation)
	assert.Equal(t, "kumusta", *messages[0].Translation)
	assert.False(t, messages[0].Pending)
	assert.Nil(t, messages[1].Translation)
}

func TestMessagesMissingFieldReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	messages, err := c.Messages(context.Background(), "en")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessagesNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Messages(context.Background(), "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNormalizeLanguageCode(t *testing.T) {
	assert.Equal(t, "fil", NormalizeLanguageCode("tl"))
	assert.Equal(t, "fil", NormalizeLanguageCode("fil"))
	assert.Equal(t, "en", NormalizeLanguageCode("en"))
	assert.Equal(t, "ceb", NormalizeLanguageCode("ceb"))
}
