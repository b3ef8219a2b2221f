package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huellitas-unexpo/rescuebot/core/buildinfo"
	"github.com/huellitas-unexpo/rescuebot/core/logger"
)

// Check reports whether a dependency is healthy.
type Check func(ctx context.Context) error

// Server is the ops HTTP endpoint: /healthz and /metrics.
type Server struct {
	srv    *http.Server
	router *gin.Engine
}

// NewServer builds the ops server. Named checks run on every /healthz call.
func NewServer(listen string, rec *Recorder, checks map[string]Check) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "fail", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version})
	})
	if rec != nil {
		r.GET("/metrics", gin.WrapH(rec.Handler()))
	}

	return &Server{
		router: r,
		srv: &http.Server{
			Addr:              listen,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the routes, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Ops.LogAttrs(ctx, slog.LevelInfo, "ops.listen", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Ops.LogAttrs(context.Background(), slog.LevelInfo, "ops.stopped")
	return nil
}
