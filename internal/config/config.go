// Package config handles application configuration loading from a YAML file
// with environment variable overrides.
package config

import (
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	contextutils "gabaychat/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the chat widget service
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Upstream translation/message backend
	Upstream UpstreamConfig `json:"upstream" yaml:"upstream"`

	// Widget behavior
	Widget WidgetConfig `json:"widget" yaml:"widget"`

	// Settings page groups
	Settings SettingsConfig `json:"settings" yaml:"settings"`

	// UI string localization
	I18n I18nConfig `json:"i18n" yaml:"i18n"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	AppBaseURL    string   `json:"app_base_url" yaml:"app_base_url"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
}

// UpstreamConfig represents the translation/message backend the widget talks to.
// BaseURL is the backend origin; Endpoints is the named path table. No
// validation is performed here; a malformed base URL surfaces as a request
// failure downstream.
type UpstreamConfig struct {
	BaseURL   string          `json:"base_url" yaml:"base_url"`
	Endpoints EndpointsConfig `json:"endpoints" yaml:"endpoints"`
	// Timeout bounds each upstream call. Zero falls back to DefaultHTTPTimeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// EndpointsConfig is the versioned endpoint contract for the upstream
// backend. Save goes to Send, listing goes to Messages; both entries are
// always present.
type EndpointsConfig struct {
	Translate string `json:"translate" yaml:"translate"`
	Languages string `json:"languages" yaml:"languages"`
	Root      string `json:"root" yaml:"root"`
	Send      string `json:"send" yaml:"send"`
	Messages  string `json:"messages" yaml:"messages"`
}

// URL joins the backend origin with a relative endpoint path.
func (u *UpstreamConfig) URL(path string) string {
	return u.BaseURL + path
}

// WidgetConfig represents chat widget behavior configuration
type WidgetConfig struct {
	// MaxMessageLength bounds a single send. Zero disables the check.
	MaxMessageLength int `json:"max_message_length" yaml:"max_message_length"`
	// RefreshDelays are the fixed short delays after a send at which the
	// frontend is told to re-fetch the list, in milliseconds.
	RefreshDelays []int `json:"refresh_delays" yaml:"refresh_delays"`
	// DefaultLanguage is the session language before any explicit selection.
	DefaultLanguage string `json:"default_language" yaml:"default_language"`
}

// SettingsGroupConfig describes one single-select group on the settings page.
type SettingsGroupConfig struct {
	Name  string              `json:"name" yaml:"name"`
	Items []SettingsItemDef   `json:"items" yaml:"items"`
	// InitialLabel pre-selects the item whose label matches literally.
	InitialLabel string `json:"initial_label" yaml:"initial_label"`
}

// SettingsItemDef is a selectable item; Section is the content section id the
// item reveals when the group drives navigation (empty for plain pickers).
type SettingsItemDef struct {
	Label   string `json:"label" yaml:"label"`
	Value   string `json:"value" yaml:"value"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// SettingsConfig represents the settings page selection groups
type SettingsConfig struct {
	Navigation SettingsGroupConfig `json:"navigation" yaml:"navigation"`
	Languages  SettingsGroupConfig `json:"languages" yaml:"languages"`
}

// I18nConfig represents UI string localization configuration
type I18nConfig struct {
	DefaultLanguage string `json:"default_language" yaml:"default_language"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "gabaychat"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`   // Default: true
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`   // Default: true
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`   // Default: true
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`       // Prefer the auto SDK tracer provider
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"`     // Default: 1.0 (100%)
}

// GetLanguages returns the selectable language codes, sorted.
func (c *Config) GetLanguages() []string {
	languages := make([]string, 0, len(c.Settings.Languages.Items))
	for _, item := range c.Settings.Languages.Items {
		languages = append(languages, item.Value)
	}
	sort.Strings(languages)
	return languages
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()
	config.applyDefaults()

	return config, nil
}

// applyDefaults fills in values the config file may omit.
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultHTTPTimeout
	}
	if c.Widget.DefaultLanguage == "" {
		c.Widget.DefaultLanguage = "en"
	}
	if c.I18n.DefaultLanguage == "" {
		c.I18n.DefaultLanguage = c.Widget.DefaultLanguage
	}
	if c.Upstream.Endpoints.Translate == "" {
		c.Upstream.Endpoints.Translate = "/translate/"
	}
	if c.Upstream.Endpoints.Languages == "" {
		c.Upstream.Endpoints.Languages = "/languages"
	}
	if c.Upstream.Endpoints.Root == "" {
		c.Upstream.Endpoints.Root = "/"
	}
	if c.Upstream.Endpoints.Send == "" {
		c.Upstream.Endpoints.Send = "/send"
	}
	if c.Upstream.Endpoints.Messages == "" {
		c.Upstream.Endpoints.Messages = "/messages"
	}
	if len(c.Widget.RefreshDelays) == 0 {
		c.Widget.RefreshDelays = []int{1000, 3000}
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Get the yaml tag for the field
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlTag = strings.Split(yamlTag, ",")[0]

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if field.Type() == reflect.TypeOf(time.Duration(0)) {
					if d, err := time.ParseDuration(envVal); err == nil {
						field.SetInt(int64(d))
					}
				} else if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if uintVal, err := strconv.ParseUint(envVal, 10, 64); err == nil {
					field.SetUint(uintVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		case reflect.Ptr:
			// Handle pointer to struct
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file with potential local overrides
func loadConfigWithOverrides() (result0 *Config, err error) {
	// Try to load from environment variable first
	if envPath := os.Getenv("GABAYCHAT_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	// If no environment variable is set, try default config.yaml
	return loadConfigFromFile("config.yaml")
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
