package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api/handlers"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

// Deps are the collaborators the HTTP surface routes to
type Deps struct {
	FormatService   *app.FormatService
	DownloadManager *app.DownloadManager
	Verifier        domain.CredentialVerifier
	Logger          *zap.Logger
	MultiLogger     *logger.MultiLogger
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.RateLimiter
	// Admins are user ids allowed to read every user's event logs
	Admins []string
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log, deps.MultiLogger))
	router.Use(middleware.CORS())
	if deps.RateLimiter != nil {
		router.Use(middleware.RateLimit(deps.RateLimiter))
	}

	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.Health)

	authed := router.Group("/", middleware.Auth(deps.Verifier, log))
	{
		formatHandler := handlers.NewFormatHandler(deps.FormatService, log)
		authed.POST("/formats", formatHandler.ListFormats)

		downloadHandler := handlers.NewDownloadHandler(deps.DownloadManager, log)
		download := authed.Group("/download")
		{
			download.POST("/video", downloadHandler.Download(domain.KindVideo))
			download.POST("/audio", downloadHandler.Download(domain.KindAudio))
			download.POST("/short", downloadHandler.Download(domain.KindShort))
			download.POST("/reel", downloadHandler.Download(domain.KindReel))
		}

		fileHandler := handlers.NewFileHandler(deps.DownloadManager.OutputDir())
		authed.GET("/file/:filename", fileHandler.GetFile)

		downloads := authed.Group("/downloads")
		{
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.GET("/:id/file", downloadHandler.GetDownloadFile)
			downloads.DELETE("/:id", downloadHandler.DeleteDownload)
		}

		authed.GET("/me", handlers.Me)

		logHandler := handlers.NewLogHandler(deps.MultiLogger.LogsDir(), deps.Admins)
		logs := authed.Group("/logs")
		{
			logs.GET("", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":    false,
			"error":      "not found",
			"error_kind": domain.ErrKindNotFound,
		})
	})

	return router
}
