package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T, defaultLocale string) *Translator {
	t.Helper()
	tr, err := NewTranslator(defaultLocale)
	require.NoError(t, err)
	return tr
}

func TestTranslatorLocalizes(t *testing.T) {
	tr := newTestTranslator(t, "en")

	assert.Equal(t, "Send", tr.T("en", "widget.send", nil))
	assert.Equal(t, "Ipadala", tr.T("fil", "widget.send", nil))
}

func TestTranslatorFallsBackToDefaultLocale(t *testing.T) {
	tr := newTestTranslator(t, "en")

	// Cebuano has no message file; the default locale serves.
	assert.Equal(t, "Send", tr.T("ceb", "widget.send", nil))
	assert.Equal(t, "Send", tr.T("", "widget.send", nil))
}

func TestTranslatorFallsBackToKey(t *testing.T) {
	tr := newTestTranslator(t, "en")

	assert.Equal(t, "widget.unknown", tr.T("en", "widget.unknown", nil))
	assert.Equal(t, "", tr.T("en", "", nil))
}

func TestTranslatorInvalidDefaultLocale(t *testing.T) {
	tr := newTestTranslator(t, "not a locale")

	assert.Equal(t, "Send", tr.T("", "widget.send", nil))
}

func TestStringsCoversAllKeys(t *testing.T) {
	tr := newTestTranslator(t, "en")

	strings := tr.Strings("fil")
	require.Len(t, strings, len(messageKeys))
	for key, value := range strings {
		assert.NotEqual(t, key, value, "key %s has no translation", key)
	}
	assert.Equal(t, "Ipadala", strings["widget.send"])
}
