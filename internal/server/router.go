package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hubrr/internal/registry"
	"hubrr/pkg/logger"
)

// Server is the directory HTTP server plus its relay hub.
type Server struct {
	cfg     Config
	log     *logger.Logger
	hub     *Hub
	metrics *Metrics
	engine  *gin.Engine
}

// New wires the router for cfg on top of reg.
func New(cfg Config, reg registry.Registry, l *logger.Logger) *Server {
	if cfg.Mode == logger.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if !cfg.AuthEnabled() {
		l.Logger.Warn("JWT_SECRET not set: uploads are keyed by the client-supplied device_id, so any client can replace any bundle")
	}

	metrics := NewMetrics()
	hub := NewHub(metrics)
	auth := NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL)
	limiter := NewMapLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)

	keys := NewKeysHandler(reg, l, metrics)
	relay := NewRelayHandler(hub, l)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(l))

	r.GET("/healthz", Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limited := r.Group("/", RateLimitMiddleware(limiter, metrics))
	limited.GET("/keys/for/:peer", keys.Fetch)

	authed := limited.Group("/", AuthMiddleware(auth))
	authed.POST("/keys/upload", keys.Upload)
	authed.GET("/ws", relay.Connect)

	return &Server{cfg: cfg, log: l, hub: hub, metrics: metrics, engine: r}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the relay hub. Its Run loop must be started by the caller when
// Handler is used directly.
func (s *Server) Hub() *Hub { return s.hub }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Logger.Info("directory listening",
			zap.String("addr", s.cfg.Addr),
			zap.String("backend", s.cfg.Backend),
			zap.Bool("auth", s.cfg.AuthEnabled()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
