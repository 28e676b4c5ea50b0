package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"tasktrack/internal/models"
)

// TaskStore is the persistence the HTTP layer needs.
type TaskStore interface {
	CreateTask(ctx context.Context, t models.NewTask) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	AddStep(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Options tunes the HTTP surface.
type Options struct {
	// CORSOrigin is the single origin allowed to make cross-origin calls.
	// Empty disables the CORS middleware.
	CORSOrigin string
	// StaticDir holds a built frontend; empty means API only.
	StaticDir string
}

// Server provides HTTP handlers for the task tracker.
type Server struct {
	engine    *gin.Engine
	store     TaskStore
	logger    *logrus.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store TaskStore, logger *logrus.Logger, opts Options) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(logger))
	router.Use(requestMetrics())
	if opts.CORSOrigin != "" {
		router.Use(corsPolicy(opts.CORSOrigin))
	}

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		staticDir: opts.StaticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.POST("/tasks/", s.handleCreateTask)
	s.engine.GET("/tasks/", s.handleListTasks)
	s.engine.PUT("/tasks/:task_id/add_step", s.handleAddStep)

	s.engine.NoRoute(notFound)
	s.mountStatic()
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.entry(c).WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
}

// parseID converts a path parameter to int64, answering 422 when it is not an integer.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondValidation(c, []fieldError{{
			Loc:  []string{"path", name},
			Msg:  "Input should be a valid integer",
			Type: "int_parsing",
		}})
		return 0, false
	}
	return id, true
}

// respondInternal logs a storage failure and answers with a bare 500.
func (s *Server) respondInternal(c *gin.Context, err error) {
	s.entry(c).WithError(err).Error("request failed")
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// entry returns a logger carrying the request id and route.
func (s *Server) entry(c *gin.Context) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"route":      c.FullPath(),
	})
}
