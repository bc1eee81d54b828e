package gateway

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/complyward/console-gateway/internal/config"
	"github.com/complyward/console-gateway/replayguard"
	"github.com/complyward/console-gateway/upstream"
)

// refreshReplayWindow is how long a consumed refresh token stays refused.
// Matches the upstream refresh-token grace period.
const refreshReplayWindow = 5 * time.Minute

// Server is the authentication/session gateway between the console UI and
// the upstream identity/API backend. It holds no per-request mutable state;
// each inbound request maps to independent I/O-bound work.
type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	upstream     *upstream.Client
	refreshGuard *replayguard.Guard
	log          zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		upstream:     upstream.New(cfg.GetUpstreamBaseURL(), cfg.GetUpstreamTimeout(), cfg.GetCookieSecure(), logger),
		refreshGuard: replayguard.New(refreshReplayWindow),
		log:          logger,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close releases background resources. Call on shutdown.
func (s *Server) Close() {
	s.refreshGuard.Stop()
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
