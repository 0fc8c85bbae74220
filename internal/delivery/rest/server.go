// Path: internal/delivery/rest/server.go
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pokedex/internal/events"
)

// Options holds the settings of the HTTP delivery layer.
type Options struct {
	Port     string
	PageSize int
	Debounce time.Duration
}

// Server is the HTTP server exposing the JSON API and the websocket session.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	log        *zap.Logger
}

// NewServer creates and configures a new API server.
func NewServer(
	opts Options,
	service dataService,
	theme themeStore,
	broker *events.Broker,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	log := logger.Named("http")
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	h := NewHandlers(service, theme, opts.PageSize)
	ws := NewSessionHandler(service, broker, opts, log)

	engine.GET("/healthz", h.Health)
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	h.RegisterRoutes(engine.Group("/api"))
	engine.GET("/ws", ws.Serve)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + opts.Port,
			Handler:      engine,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		log:    log,
	}
}

// Handler exposes the routing engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("API server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}
