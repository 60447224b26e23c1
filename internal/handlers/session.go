package handlers

import (
	"gabaychat/internal/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionKeyID stores the widget session identifier in the cookie session.
const sessionKeyID = "sid"

// EnsureSessionID returns the widget session id from the cookie session,
// minting one on first contact. The id is only staged on the session;
// persistSession flushes it before the response is written.
func EnsureSessionID(c *gin.Context) string {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionKeyID).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Set(sessionKeyID, id)
	return id
}

// GetSessionLanguage returns the session's selected language, falling back to
// the configured default before any explicit selection.
func GetSessionLanguage(c *gin.Context, cfg *config.Config) string {
	session := sessions.Default(c)
	if lang, ok := session.Get(config.SessionKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return cfg.Widget.DefaultLanguage
}

// SetSessionLanguage stages the selected language on the session.
func SetSessionLanguage(c *gin.Context, lang string) {
	sessions.Default(c).Set(config.SessionKeyLanguage, lang)
}

// persistSession writes staged session changes to the cookie. It is a no-op
// when nothing changed. Each handler saves at most once per request so the
// response never carries more than one session Set-Cookie header.
func persistSession(c *gin.Context) error {
	return sessions.Default(c).Save()
}
