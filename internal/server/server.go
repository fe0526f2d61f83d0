package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/auth"
	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/handlers"
	"github.com/emilythestrangee/forum/backend/internal/logger"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
)

type Server struct {
	cfg      config.Config
	handler  *handlers.Handler
	verifier *auth.Verifier
}

func New(cfg config.Config, handler *handlers.Handler) *Server {
	return &Server{
		cfg:      cfg,
		handler:  handler,
		verifier: auth.NewVerifier(cfg.JWTSecret),
	}
}

// HTTPServer wraps the router in an http.Server listening on the
// configured port.
func (s *Server) HTTPServer() *http.Server {
	if s.cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; every authenticated route will reject requests")
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("🚀 Server starting on port %s", s.cfg.Port)
	logger.Info("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	gin.SetMode(s.cfg.GinMode)
	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.handler.Health)

	requireAuth := middleware.AuthMiddleware(s.verifier)
	optionalAuth := middleware.OptionalAuthMiddleware(s.verifier)

	api := r.Group("/api")
	{
		api.GET("/health", s.handler.Health)

		// Post routes
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Post.GetComments)

		// Comment routes
		api.GET("/comments/:id", s.handler.Comment.GetComment)

		// Community routes
		api.GET("/communities", s.handler.Community.ListCommunities)
		api.GET("/communities/check-community-name", s.handler.Community.CheckName)
		api.GET("/communities/details/:name", optionalAuth, s.handler.Community.GetCommunity)

		// Feed analytics
		api.GET("/feed/stats", s.handler.Feed.Stats)
		api.GET("/feed/trending", s.handler.Feed.Trending)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(requireAuth)
		{
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.POST("/posts/:id/comments", s.handler.Post.CreateComment)

			protected.PUT("/comments/:id", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:id", s.handler.Comment.DeleteComment)
			protected.POST("/comments/:id/vote", s.handler.Comment.VoteComment)

			protected.GET("/communities/my-communities", s.handler.Community.MyCommunities)
			protected.POST("/communities", s.handler.Community.CreateCommunity)
			protected.PATCH("/communities/:name", s.handler.Community.UpdateCommunity)
			protected.POST("/communities/:name/membership", s.handler.Community.Membership)
		}
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(s.cfg.CORSOrigins) == 0 || (len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.CORSOrigins
		cfg.AllowCredentials = true
	}
	return cfg
}
