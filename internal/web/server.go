// Package web serves a JSON API and a WebSocket event stream for the
// connected devices.
package web

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"esphome-go/internal/automation"
	"esphome-go/internal/device"
	"esphome-go/internal/entity"
	"esphome-go/internal/store"
)

// Node is what the server needs from one device client.
type Node interface {
	Address() string
	State() device.State
	Info() (device.Info, bool)
	Stats() device.Stats
	Registry() *entity.Registry
}

type node struct {
	Node
	bus *device.EventBus
}

// ServerOption configures the web server.
type ServerOption func(*Server)

// WithAPIKey enables API key authentication.
func WithAPIKey(key string) ServerOption {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithAllowedOrigins sets allowed WebSocket and CORS origin patterns.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithNode serves a device under name. Notifications on bus are streamed
// to WebSocket clients.
func WithNode(name string, n Node, bus *device.EventBus) ServerOption {
	return func(s *Server) {
		s.nodes[name] = node{Node: n, bus: bus}
	}
}

// WithStore exposes the cached device records.
func WithStore(st store.Store) ServerOption {
	return func(s *Server) {
		s.store = st
	}
}

// WithAutomation sets the automation engine and script manager.
func WithAutomation(engine *automation.Engine, mgr *automation.Manager) ServerOption {
	return func(s *Server) {
		s.autoEngine = engine
		s.scriptMgr = mgr
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the application version string.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// Server is the HTTP server.
type Server struct {
	nodes          map[string]node
	store          store.Store
	scriptMgr      *automation.Manager
	autoEngine     *automation.Engine
	metrics        http.Handler
	wsHub          *WSHub
	logger         *slog.Logger
	mux            *http.ServeMux
	apiKey         string
	allowedOrigins []string
	version        string
	wg             sync.WaitGroup
	unsubEvents    []func()
}

// NewServer creates the server and starts its WebSocket hub.
func NewServer(logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		nodes:  make(map[string]node),
		logger: logger.With("component", "web"),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wsHub = NewWSHub(s.logger)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.wsHub.Run()
	}()

	for name, n := range s.nodes {
		if n.bus == nil {
			continue
		}
		s.unsubEvents = append(s.unsubEvents, n.bus.OnAll(func(ev device.Notification) {
			if ev.Type == device.UnitRaw {
				return
			}
			fields := ev.Fields()
			fields["device"] = name
			s.wsHub.Broadcast(fields)
		}))
	}

	s.routes()
	return s
}

// Stop unsubscribes from the event buses, shuts down the WebSocket hub and
// waits for its goroutine.
func (s *Server) Stop() {
	for _, unsub := range s.unsubEvents {
		unsub()
	}
	s.wsHub.Stop()
	s.wg.Wait()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/devices", s.handleAPIListDevices)
	s.mux.HandleFunc("GET /api/devices/{name}", s.handleAPIGetDevice)
	s.mux.HandleFunc("GET /api/devices/{name}/entities", s.handleAPIListEntities)
	s.mux.HandleFunc("GET /api/devices/{name}/entities/{kind}/{object_id}", s.handleAPIGetEntity)
	s.mux.HandleFunc("POST /api/devices/{name}/entities/{kind}/{object_id}/command", s.handleAPIEntityCommand)
	s.mux.HandleFunc("GET /api/inventory", s.handleAPIListInventory)
	s.mux.HandleFunc("DELETE /api/inventory/{address}", s.handleAPIDeleteInventory)
	s.mux.HandleFunc("GET /api/version", s.handleAPIVersion)

	s.mux.HandleFunc("GET /api/automations", s.handleAPIListAutomations)
	s.mux.HandleFunc("GET /api/automations/{id}", s.handleAPIGetAutomation)
	s.mux.HandleFunc("POST /api/automations", s.handleAPICreateAutomation)
	s.mux.HandleFunc("PUT /api/automations/{id}", s.handleAPIUpdateAutomation)
	s.mux.HandleFunc("DELETE /api/automations/{id}", s.handleAPIDeleteAutomation)
	s.mux.HandleFunc("POST /api/automations/{id}/toggle", s.handleAPIToggleAutomation)
	s.mux.HandleFunc("POST /api/automations/{id}/run", s.handleAPIRunAutomation)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// ServeHTTP implements http.Handler, applying auth and CORS middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS: check Origin on mutating requests to prevent CSRF.
	if origin := r.Header.Get("Origin"); origin != "" && len(s.allowedOrigins) > 0 {
		if r.Method == http.MethodOptions {
			if !s.isOriginAllowed(origin) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			if !s.isOriginAllowed(origin) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
	}

	// The WebSocket upgrade and /metrics cannot carry custom headers from
	// browsers and scrapers; only /api/ is key protected.
	if s.apiKey != "" && strings.HasPrefix(r.URL.Path, "/api/") {
		key := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}
	s.mux.ServeHTTP(w, r)
}

// isOriginAllowed checks if the origin matches any allowed origin pattern.
func (s *Server) isOriginAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) nodeNames() []string {
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
