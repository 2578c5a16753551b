package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emilythestrangee/forum/backend/internal/auth"
	"github.com/emilythestrangee/forum/backend/internal/cache"
	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/handlers"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
	"github.com/emilythestrangee/forum/backend/internal/observability"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	tokens  *auth.TokenIssuer
	handler *handlers.Handler
}

// NewServer wires the stores and handlers on top of an open database. c may
// be nil, in which case reads always hit the database.
func NewServer(cfg *config.Config, db database.Service, c *cache.Cache) *Server {
	gormDB := db.GetDB()
	tokens := auth.NewTokenIssuer(cfg.Secret)

	handler := handlers.NewHandler(
		store.NewUserStore(gormDB),
		store.NewContentStore(gormDB, c),
		store.NewVoteLedger(gormDB, c),
		tokens,
	)

	return &Server{
		cfg:     cfg,
		db:      db,
		tokens:  tokens,
		handler: handler,
	}
}

// HTTPServer returns the configured http.Server for the router.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(observability.Logger))
	r.Use(middleware.Metrics())

	// CORS configuration
	origins := s.cfg.Origins()
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(s.tokens)

	// User routes
	user := r.Group("/user")
	{
		user.POST("/register", s.handler.Auth.Register)
		user.POST("/username", s.handler.Auth.UsernameAvailable)
		user.POST("/email", s.handler.Auth.EmailAvailable)
		user.POST("/authenticate", s.handler.Auth.Authenticate)
		user.GET("/:username", s.handler.User.GetProfile)
	}
	r.GET("/profile", requireAuth, s.handler.Auth.Profile)

	// Post routes (public reads)
	r.GET("/feed", s.handler.Post.Feed)
	r.GET("/post/:id", s.handler.Post.GetPost)

	// Protected routes (authentication required)
	protected := r.Group("")
	protected.Use(requireAuth)
	{
		protected.POST("/post/submit", s.handler.Post.SubmitPost)
		protected.POST("/post/:id/comment", s.handler.Comment.CreateComment)
		protected.GET("/post/:id/pvote", s.handler.Post.PostVote)
		protected.GET("/post/:id/cvotes", s.handler.Post.CommentVotes)
		protected.PUT("/post/:id/upvote", s.handler.Post.UpvotePost)
		protected.PUT("/post/:id/downvote", s.handler.Post.DownvotePost)

		protected.PUT("/comment/:id/upvote", s.handler.Comment.UpvoteComment)
		protected.PUT("/comment/:id/downvote", s.handler.Comment.DownvoteComment)
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.db.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
