package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"estate_market_backend/internal/admin"
	"estate_market_backend/internal/booking"
	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/conversation"
	"estate_market_backend/internal/favorite"
	"estate_market_backend/internal/history"
	"estate_market_backend/internal/jobs"
	"estate_market_backend/internal/middleware"
	"estate_market_backend/internal/platform/database"
	platformes "estate_market_backend/internal/platform/elasticsearch"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/realtime"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/shared"
	"estate_market_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&property.Property{},
		&property.PropertyImage{},
		&review.Review{},
		&booking.Booking{},
		&favorite.Favorite{},
		&history.SearchHistory{},
		&history.ViewingHistory{},
		&conversation.Conversation{},
		&conversation.Message{},
	}
}

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	User         *user.Handler
	Property     *property.Handler
	Review       *review.Handler
	Booking      *booking.Handler
	Favorite     *favorite.Handler
	History      *history.Handler
	Conversation *conversation.Handler
	Realtime     *realtime.Handler
	Admin        *admin.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger
	db         *gorm.DB

	historyPruneJob *jobs.HistoryPruneJob

	ESClient  *platformes.ESClientWrapper
	AppLogger *zap.Logger
}

// NewServer builds the router, mounts every module and prepares the HTTP server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	verifier middleware.TokenVerifier,
	userService shared.Service,
	handlers Handlers,
	historyPruneJob *jobs.HistoryPruneJob,
	esClient *platformes.ESClientWrapper,
) (*Server, error) {
	if cfg.DBAutoMigrate {
		if err := database.AutoMigrate(db, Models()...); err != nil {
			return nil, err
		}
		logger.Info("Database schema migrated")
	}

	router := NewRouter(cfg, logger, db, esClient, verifier, userService, handlers)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:      httpServer,
		router:          router,
		cfg:             cfg,
		logger:          logger,
		db:              db,
		historyPruneJob: historyPruneJob,
		ESClient:        esClient,
		AppLogger:       logger,
	}, nil
}

// NewRouter assembles the gin engine with global middleware and every route.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	esClient *platformes.ESClientWrapper,
	verifier middleware.TokenVerifier,
	userService shared.Service,
	h Handlers,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	common.RegisterJSONFieldNames()
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))
	router.NoRoute(middleware.NoRoute)
	router.NoMethod(middleware.NoMethod)

	authMW := middleware.AuthMiddleware(verifier, userService, logger.Named("AuthMiddleware"))
	optionalAuthMW := middleware.OptionalAuth(verifier, userService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RequireRole(common.RoleAdmin)

	router.GET("/health", healthHandler(db, esClient))

	api := router.Group("/api")
	h.User.RegisterRoutes(api, authMW)
	h.Property.RegisterRoutes(api, authMW, optionalAuthMW)
	h.Review.RegisterRoutes(api, authMW)
	h.Booking.RegisterRoutes(api, authMW)
	h.Favorite.RegisterRoutes(api, authMW)
	h.History.RegisterRoutes(api, authMW)
	h.Conversation.RegisterRoutes(api, authMW)
	h.Realtime.RegisterRoutes(api, authMW)
	h.Admin.RegisterRoutes(api, authMW, adminRoleMW)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
		c.AllowCredentials = true
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeader, middleware.RequestIDHeader}
	c.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	return c
}

// healthHandler fails only on the database. Search is optional and reported as
// "disabled", "up" or "degraded".
func healthHandler(db *gorm.DB, esClient *platformes.ESClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "database": "unreachable"})
			return
		}

		search := "disabled"
		if esClient != nil {
			search = "up"
			if err := esClient.Ping(ctx); err != nil {
				search = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP", "database": "up", "search": search})
	}
}

func (s *Server) Start() error {
	if s.historyPruneJob != nil {
		if err := s.historyPruneJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start history prune job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.historyPruneJob != nil {
		s.historyPruneJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
