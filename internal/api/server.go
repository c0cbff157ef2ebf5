// Package api exposes the printer directory over HTTP and WebSocket.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/thereceipt/printer-directory/internal/discover"
	"github.com/thereceipt/printer-directory/internal/spool"
)

// Server is the directory API server.
type Server struct {
	router   *gin.Engine
	manager  *discover.Manager
	upgrader websocket.Upgrader
	ws       *clientSet
	log      zerolog.Logger
}

// NewServer wires routes over a discovery manager.
func NewServer(manager *discover.Manager, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	server := &Server{
		router:  router,
		manager: manager,
		ws:      newClientSet(),
		log:     log.With().Str("component", "api").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local service, all origins allowed
			},
		},
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/printers", s.handleGetPrinters)
	s.router.GET("/printers/default", s.handleGetDefault)
	s.router.GET("/printer/:id", s.handleGetPrinter)
	s.router.GET("/printer/:id/capabilities", s.handleGetCapabilities)
	s.router.POST("/printer/:id/name", s.handleSetPrinterName)
	s.router.POST("/detect", s.handleDetect)

	s.router.GET("/ws", s.handleWebSocket)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// Run starts serving on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// handleGetPrinters returns the current merged printer view.
func (s *Server) handleGetPrinters(c *gin.Context) {
	c.JSON(200, gin.H{
		"printers": s.manager.All(),
	})
}

// handleGetDefault resolves the host default printer. A host without a
// default reports 404 with no error body beyond the reason.
func (s *Server) handleGetDefault(c *gin.Context) {
	p, err := s.manager.Default()
	if err != nil {
		s.respondSpoolError(c, err)
		return
	}
	if p == nil {
		c.JSON(404, gin.H{"error": "no default printer"})
		return
	}
	c.JSON(200, gin.H{"printer": p})
}

func (s *Server) handleGetPrinter(c *gin.Context) {
	p := s.manager.Get(c.Param("id"))
	if p == nil {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}
	c.JSON(200, gin.H{"printer": p})
}

// handleGetCapabilities re-probes bin capabilities on demand.
func (s *Server) handleGetCapabilities(c *gin.Context) {
	caps, err := s.manager.Capabilities(c.Param("id"))
	if err != nil {
		if errors.Is(err, spool.ErrUnstable) {
			s.respondSpoolError(c, err)
			return
		}
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"capabilities": caps})
}

func (s *Server) handleSetPrinterName(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "name is required"})
		return
	}

	if !s.manager.SetName(c.Param("id"), req.Name) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}
	c.JSON(200, gin.H{"success": true})
}

// handleDetect forces a rescan of every discovery source.
func (s *Server) handleDetect(c *gin.Context) {
	printers, err := s.manager.Detect()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"printers": printers})
}

// respondSpoolError maps spooler errors onto HTTP statuses. Instability is
// a retryable condition, reported as 503 so callers back off and retry.
func (s *Server) respondSpoolError(c *gin.Context, err error) {
	if errors.Is(err, spool.ErrUnstable) {
		c.JSON(503, gin.H{"error": "printer directory changed during query, retry"})
		return
	}
	c.JSON(500, gin.H{"error": err.Error()})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
