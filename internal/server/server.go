// Package server exposes the notification ingestion and categorization HTTP
// API consumed by the mobile companion app.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rupeeflow/internal/pipeline"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr         string
	AllowOrigins []string
}

// Server wires the pipeline behind a gin router.
type Server struct {
	pipe   *pipeline.Pipeline
	logger *slog.Logger
	router *gin.Engine
	http   *http.Server
}

// New builds the router and registers all routes.
func New(pipe *pipeline.Pipeline, logger *slog.Logger, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	s := &Server{
		pipe:   pipe,
		logger: logger,
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	router.GET("/healthz", s.healthCheck)

	v1 := router.Group("/v1")
	v1.POST("/notifications", s.ingestNotification)
	v1.GET("/transactions", s.listTransactions)
	v1.GET("/transactions/pending", s.listPendingTransactions)
	v1.POST("/transactions/:id/categorise", s.categoriseTransaction)
	v1.GET("/categories", s.listCategories)
	v1.GET("/merchants", s.listMerchants)
	v1.GET("/summary", s.monthlySummary)

	return s
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
