package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/auralink/auralink-server/config"
	"github.com/auralink/auralink-server/internal/cache"
	"github.com/auralink/auralink-server/internal/handlers"
	"github.com/auralink/auralink-server/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %v", err)
	}
	if redisClient != nil {
		logger.Info("event list cache enabled", zap.String("redis_url", cfg.RedisURL))
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	setupRoutes(r, db, cache.New(redisClient))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("server listening", zap.String("port", port))
	return http.ListenAndServe(":"+port, corsHandler.Handler(r))
}

func initLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func setupRoutes(r *gin.Engine, db *gorm.DB, store *cache.Cache) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.CacheMiddleware(store))

	public := r.Group("/api")
	{
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
		}
	}

	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.PUT("/:id", handlers.UpdateEvent)
			eventProtected.DELETE("/:id", handlers.DeleteEvent)
			eventProtected.POST("/:id/invite", handlers.InviteToEvent)

			eventProtected.POST("/:id/join", handlers.JoinEvent)
			eventProtected.POST("/:id/leave", handlers.LeaveEvent)
			eventProtected.POST("/:id/approve-request/:requestId", handlers.ApproveRequest)
			eventProtected.POST("/:id/reject-request/:requestId", handlers.RejectRequest)
			eventProtected.GET("/my-events-requests", handlers.ListMyEventsRequests)
			eventProtected.POST("/checkin", handlers.CheckInParticipant)
		}

		protected.GET("/bookings", handlers.ListBookings)
		protected.GET("/bookings/:eventId/qr", handlers.GenerateBookingQR)

		userProtected := protected.Group("/users")
		{
			userProtected.GET("/me", handlers.GetProfile)
			userProtected.GET("/all", handlers.SearchUsers)
			userProtected.GET("/:id", handlers.GetUser)
			userProtected.POST("/:id/follow", handlers.FollowUser)
			userProtected.POST("/:id/unfollow", handlers.UnfollowUser)
			userProtected.GET("/:id/following", handlers.ListFollowing)
			userProtected.GET("/:id/followers", handlers.ListFollowers)
		}
	}
}
