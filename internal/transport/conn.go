package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hubrr/internal/domain"
)

// ErrClosed is returned by Receive after the connection went away.
var ErrClosed = errors.New("transport: connection closed")

const writeWait = 10 * time.Second

// Conn is one relay connection.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
	in      chan domain.Envelope
	done    chan struct{}
	quit    chan struct{}
	err     error // set before done is closed

	closeOnce sync.Once
}

// Dial connects to the relay at rawURL as peer. token, when set, is sent as
// a bearer token; peer is sent as a query parameter for servers running
// without auth.
func Dial(ctx context.Context, rawURL string, peer domain.PeerID, token string) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: bad url: %w", err)
	}
	if peer != "" {
		q := u.Query()
		q.Set("peer", peer.String())
		u.RawQuery = q.Encode()
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("transport: dial: %w", domain.ErrUnauthorized)
			case http.StatusTooManyRequests:
				return nil, fmt.Errorf("transport: dial: %w", domain.ErrRateLimited)
			}
		}
		return nil, fmt.Errorf("transport: dial: %w", err)
	}

	c := &Conn{
		ws:   ws,
		in:   make(chan domain.Envelope, 64),
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) readLoop() {
	defer close(c.done)
	for {
		var env domain.Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			c.err = err
			return
		}
		select {
		case c.in <- env:
		case <-c.quit:
			return
		}
	}
}

// Send writes env to the relay. The relay stamps the sender.
func (c *Conn) Send(ctx context.Context, env domain.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().Unix()
	}
	return c.ws.WriteJSON(env)
}

// Receive returns the next envelope addressed to this peer.
func (c *Conn) Receive(ctx context.Context) (domain.Envelope, error) {
	select {
	case env := <-c.in:
		return env, nil
	case <-c.done:
		select {
		case env := <-c.in:
			return env, nil
		default:
		}
		if c.err != nil && !websocket.IsCloseError(c.err, websocket.CloseNormalClosure) {
			return domain.Envelope{}, fmt.Errorf("%w: %v", ErrClosed, c.err)
		}
		return domain.Envelope{}, ErrClosed
	case <-ctx.Done():
		return domain.Envelope{}, ctx.Err()
	}
}

// Close sends a close frame and tears the connection down.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

var _ domain.Transport = (*Conn)(nil)
