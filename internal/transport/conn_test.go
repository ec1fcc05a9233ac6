package transport_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hubrr/internal/directory"
	"hubrr/internal/domain"
	"hubrr/internal/registry"
	"hubrr/internal/server"
	"hubrr/internal/services/keys"
	"hubrr/internal/services/message"
	"hubrr/internal/store"
	"hubrr/internal/transport"
	"hubrr/pkg/logger"
)

type relay struct {
	http *httptest.Server
	srv  *server.Server
}

func startRelay(t *testing.T, secret string) relay {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := server.DefaultConfig()
	cfg.RateLimitRPS = 0
	cfg.JWTSecret = secret
	srv := server.New(cfg, registry.NewMemory(), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return relay{http: ts, srv: srv}
}

func (r relay) wsURL() string { return "ws" + strings.TrimPrefix(r.http.URL, "http") + "/ws" }

func (r relay) waitFor(t *testing.T, peer string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.srv.Hub().ClientCount(peer) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%s never registered with the hub", peer)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, r relay, peer domain.PeerID) *transport.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := transport.Dial(ctx, r.wsURL(), peer, "")
	if err != nil {
		t.Fatalf("Dial %s: %v", peer, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	r.waitFor(t, peer.String())
	return c
}

func TestRelay_EndToEnd(t *testing.T) {
	r := startRelay(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dc := directory.New(r.http.URL, "", 0)
	bobKeys := keys.New(store.NewMemoryStore(), dc, nil)
	bob, err := bobKeys.EnsureKeys(ctx)
	if err != nil {
		t.Fatalf("EnsureKeys: %v", err)
	}
	bobID := domain.PeerID(bob.DeviceID)

	aliceMsgs := message.New(dc, keys.New(store.NewMemoryStore(), dc, nil), nil)
	bobMsgs := message.New(dc, bobKeys, nil)

	bobConn := dial(t, r, bobID)
	aliceConn := dial(t, r, "alice")

	packed, err := aliceMsgs.Encrypt(ctx, bobID, "over the wire")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if err := aliceConn.Send(ctx, domain.Envelope{From: "mallory", To: bobID, Payload: packed}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	env, err := bobConn.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if env.From != "alice" {
		t.Fatalf("relay did not stamp sender: %q", env.From)
	}
	if env.Timestamp == 0 {
		t.Fatal("missing timestamp")
	}
	text, ok := bobMsgs.Decrypt(ctx, env.Payload)
	if !ok || text != "over the wire" {
		t.Fatalf("Decrypt = %q, %v", text, ok)
	}
}

func TestRelay_NoEchoAndNoQueue(t *testing.T) {
	r := startRelay(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a := dial(t, r, "a")
	marker := dial(t, r, "marker")
	if err := a.Send(ctx, domain.Envelope{To: "offline", Payload: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := a.Send(ctx, domain.Envelope{To: "marker", Payload: "y"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// The relay handles one connection's envelopes in order, so once the
	// marker arrives the first envelope has already been routed.
	if env, err := marker.Receive(ctx); err != nil || env.Payload != "y" {
		t.Fatalf("marker Receive = %+v, %v", env, err)
	}

	b := dial(t, r, "offline")
	short, cancelShort := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancelShort()
	if _, err := b.Receive(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("offline envelope was queued: %v", err)
	}

	short2, cancelShort2 := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancelShort2()
	if _, err := a.Receive(short2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("sender received its own envelope: %v", err)
	}
}

func TestReceiveAfterClose(t *testing.T) {
	r := startRelay(t, "")
	c := dial(t, r, "solo")
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_ = c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Receive(ctx); !errors.Is(err, transport.ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}

func TestDial_Unauthorized(t *testing.T) {
	r := startRelay(t, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := transport.Dial(ctx, r.wsURL(), "alice", "")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}

	token, err := server.NewAuthenticator("secret", time.Hour).Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := transport.Dial(ctx, r.wsURL(), "", token)
	if err != nil {
		t.Fatalf("Dial with token: %v", err)
	}
	defer c.Close()
	r.waitFor(t, "alice")
}
