package status

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Stats is the snapshot served at /stats.
type Stats struct {
	Users          int   `json:"users"`
	ArmedPositions int   `json:"armedPositions"`
	CachedTokens   int   `json:"cachedTokens"`
	TotalTrades    int   `json:"totalTrades"`
	RPCLatencyMs   int64 `json:"rpcLatencyMs"`
	UptimeSeconds  int64 `json:"uptimeSeconds"`
}

// Server exposes the operational endpoints: /health for liveness probes and
// /stats for a quick look at what the bot is doing.
type Server struct {
	app     *fiber.App
	host    string
	port    int
	started time.Time

	stats   func() Stats
	healthy func() bool
}

// NewServer creates the status server. stats and healthy are polled on each
// request; both must be safe for concurrent use.
func NewServer(host string, port int, stats func() Stats, healthy func() bool) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})

	s := &Server{
		app:     app,
		host:    host,
		port:    port,
		started: time.Now(),
		stats:   stats,
		healthy: healthy,
	}

	app.Get("/health", s.handleHealth)
	app.Get("/stats", s.handleStats)
	return s
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	code := fiber.StatusOK
	state := "ok"
	if s.healthy != nil && !s.healthy() {
		code = fiber.StatusServiceUnavailable
		state = "degraded"
	}
	return c.Status(code).JSON(fiber.Map{
		"status": state,
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	snap := s.stats()
	snap.UptimeSeconds = int64(time.Since(s.started).Seconds())
	return c.JSON(snap)
}

// Start starts serving; it blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	log.Info().Str("addr", addr).Msg("status server listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
