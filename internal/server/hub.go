package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hubrr/internal/domain"
	"hubrr/pkg/logger"
)

// Hub routes relay envelopes to the connections of their recipient.
type Hub struct {
	mu sync.RWMutex

	// peers maps a peer id to its open connections
	peers map[string]map[*RelayClient]struct{}

	// events carries registrations and removals in the order they happened
	events chan hubEvent

	metrics *Metrics
}

type hubEvent struct {
	client *RelayClient
	join   bool
}

func NewHub(m *Metrics) *Hub {
	return &Hub{
		peers:   make(map[string]map[*RelayClient]struct{}),
		events:  make(chan hubEvent, 256),
		metrics: m,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			if ev.join {
				h.addClient(ev.client)
			} else {
				h.removeClient(ev.client)
			}
		}
	}
}

func (h *Hub) Register(client *RelayClient) { h.events <- hubEvent{client: client, join: true} }
func (h *Hub) Unregister(client *RelayClient) { h.events <- hubEvent{client: client} }

// Deliver queues env for every connection of env.To and reports how many
// connections it reached.
func (h *Hub) Deliver(env domain.Envelope) int {
	payload, err := json.Marshal(env)
	if err != nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.peers[env.To.String()] {
		if c.SendMessage(payload) {
			n++
		}
	}
	if n > 0 {
		h.metrics.Relayed.Inc()
	}
	return n
}

// ClientCount returns the number of connections for peer.
func (h *Hub) ClientCount(peer string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers[peer])
}

func (h *Hub) addClient(client *RelayClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.peers[client.PeerID]
	if !ok {
		set = make(map[*RelayClient]struct{})
		h.peers[client.PeerID] = set
	}
	set[client] = struct{}{}
	h.metrics.Connected.Inc()
}

func (h *Hub) removeClient(client *RelayClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.peers[client.PeerID]; ok {
		if _, ok := set[client]; !ok {
			return
		}
		delete(set, client)
		if len(set) == 0 {
			delete(h.peers, client.PeerID)
		}
		h.metrics.Connected.Dec()
		close(client.Send)
	}
}

// RelayClient is one websocket connection.
type RelayClient struct {
	ID     string
	PeerID string
	Conn   *websocket.Conn
	Send   chan []byte
	mu     sync.Mutex
}

func NewRelayClient(conn *websocket.Conn, peerID string) *RelayClient {
	return &RelayClient{
		ID:     uuid.New().String(),
		PeerID: peerID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// WriteLoop handles outbound messages from the Send channel
func (c *RelayClient) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
		}
	}
}

func (c *RelayClient) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage queues msg without blocking; false means the queue was full.
func (c *RelayClient) SendMessage(msg []byte) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// RelayHandler upgrades /ws connections and feeds their envelopes to the hub.
type RelayHandler struct {
	hub      *Hub
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewRelayHandler(hub *Hub, l *logger.Logger) *RelayHandler {
	return &RelayHandler{
		hub: hub,
		log: l,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect identifies the caller by token subject, or by the "peer" query
// parameter when auth is disabled. The sender field of every envelope is
// overwritten with that identity.
func (h *RelayHandler) Connect(c *gin.Context) {
	peerID := strings.TrimSpace(c.Query("peer"))
	if subject, ok := c.Get(subjectKey); ok {
		peerID = subject.(string)
	}
	if peerID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse("missing peer", CodeInvalidRequest))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log := h.log.With(c.Request.Context()).With(zap.String("peer", peerID))

	client := NewRelayClient(conn, peerID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)
	log.Debug("relay connected", zap.String("client_id", client.ID))

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		var env domain.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if env.To == "" || env.Payload == "" {
			continue
		}
		env.From = domain.PeerID(peerID)
		if env.Timestamp == 0 {
			env.Timestamp = time.Now().Unix()
		}
		if n := h.hub.Deliver(env); n == 0 {
			log.Debug("recipient offline; envelope dropped", zap.String("to", env.To.String()))
		}
	}

	h.hub.Unregister(client)
	log.Debug("relay disconnected", zap.String("client_id", client.ID))
}
