package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinetrack/internal/domain"
	"cinetrack/internal/service"
)

// RouterOptions agrupa los límites de tasa y las métricas del router.
type RouterOptions struct {
	GlobalRateLimit  int
	GlobalRateWindow time.Duration
	AuthLimiter      service.RateLimiter
	Metrics          *Metrics
}

// NewRouter configura el router de Gin con middlewares y rutas /api.
func NewRouter(
	logger *zap.Logger,
	tokens *service.TokenService,
	opts RouterOptions,
	accountH *AccountHandler,
	libraryH *LibraryHandler,
	movieH *MovieHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics.Handler())
	}

	api := r.Group("/api")
	if opts.GlobalRateLimit > 0 {
		api.Use(GlobalRateLimit(opts.GlobalRateLimit, opts.GlobalRateWindow))
	}
	authed := AuthMiddleware(tokens)
	authLimit := AuthRateLimit(opts.AuthLimiter)

	users := api.Group("/users")
	users.GET("", authed, accountH.Me)
	users.POST("", authLimit, accountH.Register)
	users.PUT("", authed, accountH.Update)
	users.DELETE("", authed, accountH.Delete)
	users.POST("/login", authLimit, accountH.Login)
	users.PUT("/changePassword", authed, accountH.ChangePassword)
	users.POST("/forgotPassword", authLimit, accountH.ForgotPassword)
	users.POST("/checkCode", authLimit, accountH.CheckCode)

	lists := users.Group("", authed)
	for _, list := range []domain.ListKind{domain.ListFavorites, domain.ListSeen, domain.ListWatchlist} {
		libraryH.registerList(lists, list)
	}
	lists.GET("/unseen", libraryH.Unseen)
	lists.GET("/rate", libraryH.Rated)
	lists.PUT("/rate", libraryH.Rate)
	lists.DELETE("/rate", libraryH.DeleteRating)
	lists.POST("/filteredMovies", libraryH.Filtered)

	movies := api.Group("/movies")
	movies.GET("", movieH.List)
	movies.POST("/getMovies", movieH.ListSorted)
	movies.GET("/findByID/:id", movieH.FindByID)
	movies.GET("/findByTitle/:title", movieH.FindByTitleParam)
	movies.POST("/findByTitle", movieH.FindByTitle)
	movies.GET("/avgRating/:id", movieH.AverageRating)
	movies.GET("/updateRatings", movieH.RefreshAll)
	movies.PUT("/updateRating/:id", movieH.RefreshOne)
	movies.GET("/quote", movieH.Quote)

	admin := movies.Group("", authed, RequireAdmin())
	admin.POST("", movieH.Create)
	admin.PUT("/:id", movieH.Update)
	admin.POST("/quote", movieH.CreateQuote)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
