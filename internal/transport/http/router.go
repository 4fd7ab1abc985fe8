package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contactbook/internal/config"
	"contactbook/internal/transport/http/middleware"
)

// NewRouter assembles the gin engine: recovery, request logging, CORS, a
// global per-IP limiter plus the stricter buckets the original endpoints had
// (2/min on password reset and password change, 10/min on /me).
func NewRouter(cfg *config.Config, log *zap.Logger, h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimitPerIP(50, 100, 10_000, time.Hour))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				"X-Requested-With",
			},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: cfg.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	perMinute := func(n int) gin.HandlerFunc {
		return middleware.RateLimitPerIP(float64(n)/60.0, n, 1024, time.Hour)
	}

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh-token", h.refreshToken)
		auth.GET("/confirm_email/:token", h.confirmEmail)
		auth.POST("/request_email", h.requestEmail)
		auth.POST("/forget_password", perMinute(2), h.forgetPassword)
	}

	users := api.Group("/users", h.authRequired())
	{
		users.GET("/me", perMinute(10), h.me)
		users.PATCH("/avatar", h.adminRequired(), h.updateAvatar)
		users.PATCH("/password", perMinute(2), h.updatePassword)
	}

	contacts := api.Group("/contacts", h.authRequired())
	{
		contacts.GET("", h.listContacts)
		contacts.GET("/birthdays", h.upcomingBirthdays)
		contacts.GET("/:id", h.getContact)
		contacts.POST("", h.createContact)
		contacts.PUT("/:id", h.updateContact)
		contacts.DELETE("/:id", h.deleteContact)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	return router
}
