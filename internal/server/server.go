// internal/server/server.go

// Package server exposes the worker over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// statusClientClosedRequest is the non-standard code for a caller that went away.
const statusClientClosedRequest = 499

// TaskRunner is the part of the worker the server needs.
type TaskRunner interface {
	Tasks() []schemas.TaskName
	Has(name schemas.TaskName) bool
	ProcessTask(ctx context.Context, task schemas.Task) schemas.TaskResult
	ProcessBatch(ctx context.Context, tasks []schemas.Task) []schemas.TaskResult
}

// Server serves task invocations.
type Server struct {
	cfg    config.ServerConfig
	runner TaskRunner
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the gin engine and registers the routes.
func New(cfg config.ServerConfig, runner TaskRunner, logger *zap.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger.With(zap.String("component", "server")),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.loggingMiddleware())

	s.engine.GET("/healthz", s.health)
	api := s.engine.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks/:name", s.runTask)
	api.POST("/batch", s.runBatch)
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": s.runner.Tasks()})
}

func (s *Server) runTask(c *gin.Context) {
	name := schemas.TaskName(c.Param("name"))
	if !s.runner.Has(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": schemas.ToPayload(
			schemas.NewValidationError("name", fmt.Sprintf("unknown task '%s'", name)))})
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": schemas.ToPayload(
			schemas.NewValidationError("payload", "failed to read request body"))})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	result := s.runner.ProcessTask(ctx, schemas.Task{
		ID:      c.GetHeader("X-Request-ID"),
		Name:    name,
		Payload: payload,
	})
	status := http.StatusOK
	if result.Failed() {
		status = StatusFor(result.Error.Kind)
		_ = c.Error(errors.New(result.Error.Message))
	}
	c.JSON(status, result)
}

func (s *Server) runBatch(c *gin.Context) {
	var tasks []schemas.Task
	if err := c.ShouldBindJSON(&tasks); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": schemas.ToPayload(
			schemas.NewValidationError("payload", "request body must be a JSON array of tasks"))})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"results": s.runner.ProcessBatch(ctx, tasks)})
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

// StatusFor maps a failure kind onto an HTTP status code.
func StatusFor(kind schemas.ErrorKind) int {
	switch kind {
	case schemas.KindValidation:
		return http.StatusBadRequest
	case schemas.KindTransport, schemas.KindService:
		return http.StatusBadGateway
	case schemas.KindEmptyResponse, schemas.KindSchemaViolation, schemas.KindRetryBudgetExhausted:
		return http.StatusUnprocessableEntity
	case schemas.KindCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			s.logger.Warn("Request failed", fields...)
			return
		}
		s.logger.Info("Request handled", fields...)
	}
}
