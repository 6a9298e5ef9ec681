package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swarmreport/swarmreport/server/internal/api"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

const (
	writeWait   = 10 * time.Second
	idleTimeout = 60 * time.Second
	keepalive   = idleTimeout * 9 / 10

	// queueDepth is how many undelivered snapshots a subscriber may hold.
	queueDepth = 16

	// EventSnapshot is the only event the stream emits.
	EventSnapshot = "snapshot"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 8192,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Message is the JSON envelope sent to subscribers.
type Message struct {
	Event string               `json:"event"`
	Data  api.SnapshotResponse `json:"data"`
}

// Hub streams swarm snapshots to WebSocket subscribers.
type Hub struct {
	src      api.Snapshotter
	interval time.Duration

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// subscriber is one connected browser. Its queue is never closed; quit tells
// the writer to say goodbye and stop.
type subscriber struct {
	conn   *websocket.Conn
	queue  chan []byte
	filter *freshness.Class
	quit   chan struct{}
	once   sync.Once
}

func (s *subscriber) stop() { s.once.Do(func() { close(s.quit) }) }

// offer queues msg without blocking and reports whether it fit.
func (s *subscriber) offer(msg []byte) bool {
	select {
	case s.queue <- msg:
		return true
	default:
		return false
	}
}

// New creates a Hub reading snapshots from src every interval.
func New(src api.Snapshotter, interval time.Duration) *Hub {
	return &Hub{
		src:      src,
		interval: interval,
		subs:     make(map[*subscriber]struct{}),
	}
}

// Run pushes a snapshot every interval until ctx is done, then disconnects
// everyone.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			for _, s := range h.detachAll() {
				s.stop()
			}
			return
		case <-t.C:
			h.publish()
		}
	}
}

// ServeHTTP upgrades the request and streams snapshots until the peer goes
// away. An optional ?status=recent|normal|stale limits the clients sent; the
// summary always covers the whole swarm.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var filter *freshness.Class
	if q := r.URL.Query().Get("status"); q != "" {
		c, err := freshness.Parse(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter = &c
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s := &subscriber{
		conn:   conn,
		queue:  make(chan []byte, queueDepth),
		filter: filter,
		quit:   make(chan struct{}),
	}
	if msg, err := encode(h.src.Snapshot(), filter); err == nil {
		s.offer(msg)
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	slog.Debug("ws: subscriber joined", "remote", r.RemoteAddr, "status", r.URL.Query().Get("status"))

	go s.write()
	s.read()

	h.detach(s)
	s.stop()
	slog.Debug("ws: subscriber left", "remote", r.RemoteAddr)
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) detach(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

func (h *Hub) detachAll() []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	all := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		all = append(all, s)
		delete(h.subs, s)
	}
	return all
}

// publish takes one snapshot and offers it to every subscriber, encoding it
// once per distinct filter. Subscribers that cannot keep up are cut off.
func (h *Hub) publish() {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	snap := h.src.Snapshot()
	encoded := make(map[string][]byte)
	for _, s := range subs {
		key := filterKey(s.filter)
		msg, ok := encoded[key]
		if !ok {
			var err error
			if msg, err = encode(snap, s.filter); err != nil {
				slog.Error("ws: encode snapshot", "err", err)
				return
			}
			encoded[key] = msg
		}
		if !s.offer(msg) {
			slog.Warn("ws: subscriber too slow, disconnecting", "remote", s.conn.RemoteAddr().String())
			h.detach(s)
			s.stop()
		}
	}
}

func filterKey(c *freshness.Class) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func encode(snap view.Snapshot, filter *freshness.Class) ([]byte, error) {
	if filter != nil {
		kept := make([]view.Client, 0, len(snap.Clients))
		for _, c := range snap.Clients {
			if c.Class == *filter {
				kept = append(kept, c)
			}
		}
		snap.Clients = kept
	}
	return json.Marshal(Message{Event: EventSnapshot, Data: api.BuildSnapshot(snap)})
}

// write delivers queued snapshots and keepalive pings.
func (s *subscriber) write() {
	ping := time.NewTicker(keepalive)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.quit:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case msg := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// read discards inbound frames; it returns when the peer disconnects or
// stays silent past idleTimeout.
func (s *subscriber) read() {
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
