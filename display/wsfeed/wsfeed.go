// Package wsfeed is a scan.Display implementation that broadcasts scan
// results, history and status updates to UI clients over WebSocket.
//
// The feed is strictly outbound: incoming frames are drained and
// ignored, so connected clients can observe scans but never control
// the reader.
package wsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"

	"github.com/nedpals/tagscan/buildinfo"
	"github.com/nedpals/tagscan/scan"
	"github.com/nedpals/tagscan/tag"
)

// WebSocket message type constants.
const (
	MsgTypeScanResult   = "scanResult"
	MsgTypeHistory      = "history"
	MsgTypeAvailability = "availability"
	MsgTypeError        = "error"
)

// Envelope is the generic message wrapper sent to clients.
type Envelope struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ScanResultPayload is the payload broadcast when a tag is resolved.
type ScanResultPayload struct {
	PrimaryType string      `json:"primaryType"`
	Entries     []tag.Entry `json:"entries"`
	ScannedAt   string      `json:"scannedAt"` // RFC3339
}

// AvailabilityPayload reports radio availability changes.
type AvailabilityPayload struct {
	Available bool `json:"available"`
}

// ErrorPayload carries user-visible error messages.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Config holds the feed's settings.
type Config struct {
	Port int
	// Announce registers the feed via mDNS so UI shells on the local
	// network can discover it.
	Announce bool
}

// Server implements scan.Display over WebSocket.
type Server struct {
	config   Config
	logger   *log.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
	mdns       *zeroconf.Server

	clientsMux sync.RWMutex
	clients    map[*websocket.Conn]string // conn -> clientID

	// Snapshot for late joiners.
	stateMux    sync.RWMutex
	lastResult  *ScanResultPayload
	lastHistory []scan.HistoryEntry
	available   bool
}

var _ scan.Display = (*Server)(nil)

// New creates a feed server. Call Start to begin accepting clients.
func New(config Config) *Server {
	return &Server{
		config:  config,
		logger:  log.New(os.Stderr, "[wsfeed] ", log.LstdFlags),
		clients: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start begins serving the feed. It returns once the listener is
// running; serve errors are logged.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.routes(),
	}

	go func() {
		s.logger.Printf("listening on :%d", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()

	if s.config.Announce {
		mdns, err := zeroconf.Register(
			buildinfo.DisplayName,
			"_tagscan._tcp",
			"local.",
			s.config.Port,
			[]string{"version=" + buildinfo.Version},
			nil,
		)
		if err != nil {
			s.logger.Printf("mDNS registration failed: %v", err)
		} else {
			s.mdns = mdns
		}
	}

	return nil
}

// Stop shuts the feed down and disconnects all clients.
func (s *Server) Stop() {
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}

	s.clientsMux.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]string)
	s.clientsMux.Unlock()
}

// OnScanResult broadcasts a completed tag read.
func (s *Server) OnScanResult(result *tag.ScanResult) {
	payload := &ScanResultPayload{
		PrimaryType: result.PrimaryType(),
		Entries:     result.Entries(),
		ScannedAt:   time.Now().Format(time.RFC3339),
	}

	s.stateMux.Lock()
	s.lastResult = payload
	s.stateMux.Unlock()

	s.broadcast(Envelope{ID: uuid.NewString(), Type: MsgTypeScanResult, Payload: payload})
}

// OnHistoryChanged broadcasts the updated scan history.
func (s *Server) OnHistoryChanged(entries []scan.HistoryEntry) {
	s.stateMux.Lock()
	s.lastHistory = entries
	s.stateMux.Unlock()

	s.broadcast(Envelope{ID: uuid.NewString(), Type: MsgTypeHistory, Payload: entries})
}

// OnAvailabilityChanged broadcasts radio availability.
func (s *Server) OnAvailabilityChanged(available bool) {
	s.stateMux.Lock()
	s.available = available
	s.stateMux.Unlock()

	s.broadcast(Envelope{ID: uuid.NewString(), Type: MsgTypeAvailability, Payload: AvailabilityPayload{Available: available}})
}

// OnError broadcasts a user-visible error message.
func (s *Server) OnError(message string) {
	s.broadcast(Envelope{ID: uuid.NewString(), Type: MsgTypeError, Payload: ErrorPayload{Message: message}})
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"version":   buildinfo.FullVersion(),
			"timestamp": time.Now().Format(time.RFC3339),
			"clients":   s.clientCount(),
		})
	})
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed: %v", err)
		return
	}

	clientID := uuid.NewString()
	s.clientsMux.Lock()
	s.clients[conn] = clientID
	s.clientsMux.Unlock()
	s.logger.Printf("client %s connected (%d total)", clientID, s.clientCount())

	s.sendSnapshot(conn)

	// Drain incoming frames until the client goes away. The feed
	// accepts no commands.
	go func() {
		defer func() {
			s.clientsMux.Lock()
			delete(s.clients, conn)
			s.clientsMux.Unlock()
			conn.Close()
			s.logger.Printf("client %s disconnected", clientID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// sendSnapshot brings a late joiner up to date with the current
// availability, last result and history.
func (s *Server) sendSnapshot(conn *websocket.Conn) {
	s.stateMux.RLock()
	available := s.available
	lastResult := s.lastResult
	lastHistory := s.lastHistory
	s.stateMux.RUnlock()

	conn.WriteJSON(Envelope{Type: MsgTypeAvailability, Payload: AvailabilityPayload{Available: available}})
	if lastResult != nil {
		conn.WriteJSON(Envelope{Type: MsgTypeScanResult, Payload: lastResult})
	}
	if lastHistory != nil {
		conn.WriteJSON(Envelope{Type: MsgTypeHistory, Payload: lastHistory})
	}
}

func (s *Server) broadcast(env Envelope) {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	for conn, clientID := range s.clients {
		if err := conn.WriteJSON(env); err != nil {
			s.logger.Printf("write to client %s failed: %v", clientID, err)
		}
	}
}

func (s *Server) clientCount() int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	return len(s.clients)
}
