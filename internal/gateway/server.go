package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aigents/relay/internal/config"
	"github.com/aigents/relay/internal/metrics"
	"github.com/aigents/relay/internal/relay"
)

// Server is the client-facing HTTP boundary of the relay. All collaborators
// are injected at startup; the endpoint registry instance is shared with the
// forwarder and prober so rotation state is process-wide.
type Server struct {
	Config    *config.Config
	Registry  *relay.Registry
	Forwarder *relay.Forwarder
	Prober    *relay.Prober
	Metrics   *metrics.Relay

	httpSrv *http.Server
	startAt time.Time
}

func NewServer(cfg *config.Config, reg *relay.Registry, fwd *relay.Forwarder, prober *relay.Prober, m *metrics.Relay) *Server {
	return &Server{
		Config:    cfg,
		Registry:  reg,
		Forwarder: fwd,
		Prober:    prober,
		Metrics:   m,
		startAt:   time.Now(),
	}
}

// Start begins listening for connections and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	engine := s.newEngine()

	addr := fmt.Sprintf(":%d", s.Config.Gateway.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	slog.Info("relay gateway starting", "port", s.Config.Gateway.Port, "endpoints", s.Registry.Len())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	if err := s.httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware())

	engine.GET("/health", s.ginHealth)
	s.registerRelayRoutes(engine)
	engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	return engine
}

// requestIDMiddleware tags every request with an ID for log correlation,
// honoring an ID supplied by the caller.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) ginHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(s.startAt).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// webhooksConfig returns the live webhook settings, falling back to the
// startup config if the hot-reload pointer has not been set.
func (s *Server) webhooksConfig() config.WebhooksConfig {
	if cfg := config.Get(); cfg != nil {
		return cfg.Webhooks
	}
	return s.Config.Webhooks
}
