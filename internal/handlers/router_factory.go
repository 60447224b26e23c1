package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"gabaychat/internal/config"
	"gabaychat/internal/i18n"
	"gabaychat/internal/middleware"
	"gabaychat/internal/observability"
	"gabaychat/internal/serviceinterfaces"
	"gabaychat/internal/services"
	"gabaychat/internal/version"
)

// NewRouter creates the router with all middleware and routes wired.
func NewRouter(
	cfg *config.Config,
	client serviceinterfaces.TranslationClient,
	widgetService services.WidgetServiceInterface,
	settingsService services.SettingsServiceInterface,
	translator *i18n.Translator,
	validator *middleware.SchemaValidator,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware())

	// HTTP request logging through the observability logger.
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gabaychat"})
	})

	// OpenTelemetry middleware for HTTP tracing with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling("gabaychat"))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
		sessionOpts.Secure = true
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	translationHandler := NewTranslationHandler(client, cfg, logger)
	widgetHandler := NewWidgetHandler(widgetService, cfg, logger)
	settingsHandler := NewSettingsHandler(settingsService, translator, cfg, logger)

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "gabaychat",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		// Translation routes
		v1.POST("/translate", middleware.RequestValidation(validator, logger, "translate_request"), translationHandler.Translate)
		v1.GET("/languages", translationHandler.Languages)
		v1.GET("/connection/test", translationHandler.TestConnection)

		widget := v1.Group("/widget")
		{
			widget.GET("", widgetHandler.GetWidget)
			widget.POST("/toggle", widgetHandler.Toggle)
			widget.POST("/messages", middleware.RequestValidation(validator, logger, "send_message_request"), widgetHandler.SendMessage)
			widget.GET("/messages", widgetHandler.ListMessages)
			widget.POST("/messages/:id/toggle", widgetHandler.ToggleOriginal)
			widget.DELETE("/messages/:id", widgetHandler.DeleteMessage)
			widget.POST("/clear", widgetHandler.Clear)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.POST("/select", middleware.RequestValidation(validator, logger, "settings_select_request"), settingsHandler.Select)
			settings.GET("/language", settingsHandler.GetLanguage)
			settings.PUT("/language", middleware.RequestValidation(validator, logger, "language_request"), settingsHandler.SetLanguage)
			settings.GET("/strings", settingsHandler.GetStrings)
		}
	}

	router.NoRoute(middleware.NoRouteHandler())

	return router
}
