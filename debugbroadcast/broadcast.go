// Package debugbroadcast is an optional side-channel that streams one JSON
// line per completed tool call to any connected observer, for iterating on
// depth/threshold tuning against a real file without re-reading server logs.
package debugbroadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Broadcaster fans a stream of tool-call summaries out to every currently
// connected /ws client. It holds a set of connections guarded by one mutex;
// there is no request/response correlation here, only one-way notification.
type Broadcaster struct {
	addr     string
	upgrader websocket.Upgrader
	connMu   sync.RWMutex
	conns    map[*websocket.Conn]struct{}
	mux      *http.ServeMux
	server   *http.Server
}

// New builds a Broadcaster listening on addr once Start is called.
func New(addr string) *Broadcaster {
	b := &Broadcaster{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
		mux:   http.NewServeMux(),
	}
	b.mux.HandleFunc("/ws", b.handleWebSocket)
	b.mux.HandleFunc("/healthz", b.handleHealthz)
	return b
}

// Start runs the HTTP server, blocking until it shuts down.
func (b *Broadcaster) Start() error {
	b.server = &http.Server{
		Addr:              b.addr,
		Handler:           b.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("debug broadcaster listening on %s", b.addr)
	err := b.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (b *Broadcaster) Stop() error {
	if b.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.server.Shutdown(ctx)
}

func (b *Broadcaster) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (b *Broadcaster) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("debug broadcaster: upgrade failed: %v", err)
		return
	}
	b.connMu.Lock()
	b.conns[conn] = struct{}{}
	b.connMu.Unlock()

	// Drain and discard anything the client sends; the only purpose of
	// keeping the read loop alive is to notice disconnects.
	go func() {
		defer b.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.connMu.Lock()
	delete(b.conns, conn)
	b.connMu.Unlock()
	_ = conn.Close()
}

// Notify pushes one JSON line to every connected observer. Writes happen
// synchronously on the caller's goroutine with no write deadline, so a slow
// client delays the caller; a failing write just drops that connection.
func (b *Broadcaster) Notify(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("debug broadcaster: marshal: %v", err)
		return
	}

	b.connMu.RLock()
	targets := make([]*websocket.Conn, 0, len(b.conns))
	for c := range b.conns {
		targets = append(targets, c)
	}
	b.connMu.RUnlock()

	for _, c := range targets {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			b.drop(c)
		}
	}
}
