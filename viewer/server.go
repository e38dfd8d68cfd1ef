// Package viewer streams live simulation snapshots to websocket clients.
//
// The simulator publishes one Snapshot per executed move; every connected
// client receives the JSON-encoded stream. Slow clients are dropped rather
// than allowed to stall the simulation.
package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ryanduan02/tenten/selfplay"
)

// Snapshot is one board state on the wire.
type Snapshot struct {
	GameID    string  `json:"game_id"`
	Seed      int64   `json:"seed"`
	MoveNum   int     `json:"move_num"`
	PieceName string  `json:"piece_name"`
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Score     int     `json:"score"`
	Heuristic float64 `json:"heuristic"`
	// Board rows as strings of '.' and '#', ready to render.
	Board []string `json:"board"`
}

// SnapshotFromEvent converts a simulator move event.
func SnapshotFromEvent(ev selfplay.MoveEvent) Snapshot {
	rows := make([]string, 0, len(ev.State.Board))
	for r := range ev.State.Board {
		line := make([]byte, len(ev.State.Board[r]))
		for c, occ := range ev.State.Board[r] {
			if occ {
				line[c] = '#'
			} else {
				line[c] = '.'
			}
		}
		rows = append(rows, string(line))
	}
	return Snapshot{
		GameID:    ev.GameID,
		Seed:      ev.Seed,
		MoveNum:   ev.MoveNum,
		PieceName: ev.Move.Piece.Name,
		Row:       ev.Move.Row,
		Col:       ev.Move.Col,
		Score:     ev.State.Score,
		Heuristic: ev.Move.HeuristicValue,
		Board:     rows,
	}
}

const (
	writeWait      = 5 * time.Second
	clientBacklog  = 64
	shutdownSlack  = 2 * time.Second
	pingInterval   = 30 * time.Second
	readDeadlineBy = 2 * pingInterval
)

// Server broadcasts snapshots on /ws and answers /healthz.
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewServer(addr string, log *slog.Logger) *Server {
	s := &Server{
		log:     log,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The viewer is a local debugging tool.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("viewer: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownSlack)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return nil
	}
}

// Publish broadcasts a snapshot to every connected client. Clients whose
// send buffer is full are disconnected.
func (s *Server) Publish(snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("viewer: encode snapshot", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			delete(s.clients, c)
			close(c.send)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("viewer: upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBacklog)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("viewer: client connected", "clients", n)

	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "slow consumer"),
					time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.drop(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

// readLoop discards inbound frames; it exists to notice disconnects and
// answer pings.
func (s *Server) readLoop(c *client) {
	_ = c.conn.SetReadDeadline(time.Now().Add(readDeadlineBy))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readDeadlineBy))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	_ = c.conn.Close()
}
