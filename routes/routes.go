package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"calmora/handlers"
	"calmora/middleware"
	"calmora/utils"
)

// RegisterTopicRoutes registers the topic catalog endpoint.
func RegisterTopicRoutes(r *gin.Engine, th *handlers.TopicHandler) {
	api := r.Group("/api/topics")
	{
		api.GET("", th.List)
	}
}

// RegisterTherapistRoutes registers therapist listing and availability endpoints.
func RegisterTherapistRoutes(r *gin.Engine, th *handlers.TherapistHandler, ah *handlers.AvailabilityHandler) {
	api := r.Group("/api/therapists")
	{
		api.GET("", th.List)
		api.GET("/:id", th.Get)
		api.GET("/:id/session-types", th.SessionTypes)
		api.GET("/:id/availability", ah.Week)
	}
}

// RegisterSessionRoutes registers the booking endpoints.
func RegisterSessionRoutes(r *gin.Engine, sh *handlers.SessionHandler) {
	api := r.Group("/api/sessions")
	{
		api.POST("", sh.Create)
		api.GET("", sh.List)
		api.GET("/:id", sh.Get)
		api.PATCH("/:id/cancel", sh.Cancel)
		api.PATCH("/:id/confirm", sh.Confirm)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, th *handlers.TopicHandler, ph *handlers.TherapistHandler, ah *handlers.AvailabilityHandler, sh *handlers.SessionHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())
	r.Use(utils.ErrorHandler())

	RegisterTopicRoutes(r, th)
	RegisterTherapistRoutes(r, ph, ah)
	RegisterSessionRoutes(r, sh)
	RegisterHealthRoute(r)
}
