package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gorate/app"
	"gorate/internal"
)

// Server exposes a RateService over HTTP
type Server struct {
	router  *gin.Engine
	service *app.RateService
	logger  *internal.Logger
}

// NewServer creates a server with routes registered
func NewServer(service *app.RateService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("[API] %s %s -> %d (%.2fms)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), float64(time.Since(started).Nanoseconds())/1e6)
	})
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/v1")
	{
		// Reference population of this session
		v1.GET("/reference", s.handleReference)
		v1.GET("/reference/percentile", s.handlePercentile)

		// Stateless computations
		v1.POST("/summary", s.handleSummary)
		v1.GET("/predictive", s.handlePredictive)
		v1.GET("/curve", s.handleCurve)

		// Streams from the configured event source
		v1.GET("/streams", s.handleStreams)
		v1.GET("/streams/:stream/summary", s.handleStreamSummary)
		v1.GET("/streams/:stream/report", s.handleStreamReport)
		v1.GET("/summaries", s.handleSummaries)
	}
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("[API] Listening on %s (session %s)", addr, s.service.SessionID())
	return s.router.Run(addr)
}
