package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("GABAYCHAT_CONFIG_FILE", path)
	return path
}

func TestNewConfigLoadsYAML(t *testing.T) {
	writeConfigFile(t, `
server:
  port: "9090"
  session_secret: "secret"
upstream:
  base_url: "http://localhost:8000"
  timeout: 30s
widget:
  max_message_length: 280
  default_language: "fil"
`)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 280, cfg.Widget.MaxMessageLength)
	assert.Equal(t, "fil", cfg.Widget.DefaultLanguage)
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	writeConfigFile(t, `
upstream:
  base_url: "http://localhost:8000"
`)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Upstream.Timeout)
	assert.Equal(t, "en", cfg.Widget.DefaultLanguage)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)
	assert.Equal(t, "/translate/", cfg.Upstream.Endpoints.Translate)
	assert.Equal(t, "/languages", cfg.Upstream.Endpoints.Languages)
	assert.Equal(t, "/", cfg.Upstream.Endpoints.Root)
	assert.Equal(t, "/send", cfg.Upstream.Endpoints.Send)
	assert.Equal(t, "/messages", cfg.Upstream.Endpoints.Messages)
	assert.Equal(t, []int{1000, 3000}, cfg.Widget.RefreshDelays)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	writeConfigFile(t, `
server:
  port: "8080"
upstream:
  base_url: "http://localhost:8000"
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("UPSTREAM_BASE_URL", "http://translator:8000")
	t.Setenv("UPSTREAM_TIMEOUT", "45s")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "http://translator:8000", cfg.Upstream.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
}

func TestNewConfigMissingFile(t *testing.T) {
	t.Setenv("GABAYCHAT_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestUpstreamURL(t *testing.T) {
	u := UpstreamConfig{BaseURL: "http://localhost:8000"}
	assert.Equal(t, "http://localhost:8000/translate/", u.URL("/translate/"))
}

func TestGetLanguages(t *testing.T) {
	cfg := &Config{}
	cfg.Settings.Languages.Items = []SettingsItemDef{
		{Label: "Filipino", Value: "fil"},
		{Label: "English", Value: "en"},
		{Label: "Cebuano", Value: "ceb"},
	}

	assert.Equal(t, []string{"ceb", "en", "fil"}, cfg.GetLanguages())
}
