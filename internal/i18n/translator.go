// Package i18n localizes user-facing UI strings for the chat widget and
// settings page.
package i18n

import (
	"embed"

	contextutils "gabaychat/internal/utils"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Translator wraps go-i18n's Bundle/Localizer for widget UI strings.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator builds a Translator with the given default locale (e.g.
// "en"), loading messages from the embedded active.*.toml files.
func NewTranslator(defaultLocale string) (result0 *Translator, err error) {
	tag, parseErr := language.Parse(defaultLocale)
	if parseErr != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.fil.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load message file %s: %w", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
	}, nil
}

// T renders the message identified by key for the given locale. Unknown
// locales fall back to the default locale, then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}

// Strings returns all widget UI strings for a locale, keyed by message id.
func (t *Translator) Strings(locale string) map[string]string {
	out := make(map[string]string, len(messageKeys))
	for _, key := range messageKeys {
		out[key] = t.T(locale, key, nil)
	}
	return out
}

// messageKeys lists every UI string the widget frontend consumes.
var messageKeys = []string{
	"widget.title",
	"widget.placeholder",
	"widget.send",
	"widget.sending",
	"widget.empty",
	"widget.show_original",
	"widget.show_translation",
	"widget.delete",
	"widget.clear",
	"widget.error.send_failed",
	"widget.error.backend_unavailable",
	"settings.title",
	"settings.language",
	"settings.connection.testing",
	"settings.connection.ok",
	"settings.connection.failed",
}
