package api

import (
	"net/http"

	"fichesynthese/internal/api/handlers"
	"fichesynthese/internal/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "fichesynthese_session"

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	SessionSecret  string
	// SecureCookies should be set when served over HTTPS.
	SecureCookies bool
	Log           *logger.Logger
}

// NewRouter builds the engine with its middleware and routes.
func NewRouter(handler *handlers.Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(opts.Log.With("component", "http")))
	router.Use(CORSMiddleware(opts.AllowedOrigins))

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   opts.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, store))

	SetupRoutes(router, handler)
	return router
}

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.HandleHealth)

		sheets := api.Group("/sheets")
		{
			sheets.POST("/generate", handler.HandleGenerateSheet)
			sheets.GET("/current", handler.HandleGetCurrentSheet)
			sheets.GET("/:sheetId", handler.HandleGetSheet)
			sheets.GET("/:sheetId/export", handler.HandleOpenExport)
			sheets.GET("/:sheetId/export/download", handler.HandleDownloadExport)
		}

		api.GET("/images/welcome", handler.HandleWelcomeImage)
	}
}
