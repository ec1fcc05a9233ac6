package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hubrr/internal/directory"
	"hubrr/internal/domain"
	"hubrr/internal/registry"
	"hubrr/internal/server"
	"hubrr/internal/services/keys"
	"hubrr/internal/store"
	"hubrr/pkg/logger"
)

func init() { gin.SetMode(gin.TestMode) }

func newServer(t *testing.T, mutate func(*server.Config)) (*httptest.Server, registry.Registry) {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.RateLimitRPS = 0
	if mutate != nil {
		mutate(&cfg)
	}
	reg := registry.NewMemory()
	ts := httptest.NewServer(server.New(cfg, reg, logger.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func localBundle(t *testing.T) domain.PublicKeyBundle {
	t.Helper()
	b, err := keys.New(store.NewMemoryStore(), nil, nil).LocalBundle(context.Background())
	if err != nil {
		t.Fatalf("LocalBundle: %v", err)
	}
	return b
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out server.Response[any]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if out.Success {
		t.Fatal("error response marked success")
	}
	return out.Code
}

func TestUploadThenFetch(t *testing.T) {
	ts, _ := newServer(t, nil)
	ctx := context.Background()
	b := localBundle(t)

	c := directory.New(ts.URL, "", 0)
	if err := c.Publish(ctx, b); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, err := c.Fetch(ctx, domain.PeerID(b.DeviceID))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.IdentityPub != b.IdentityPub || got.SignedPreKeyPub != b.SignedPreKeyPub {
		t.Fatal("fetched bundle differs from upload")
	}
	if len(got.OneTimePreKeys) != domain.OneTimePreKeyBatchSize {
		t.Fatalf("one-time prekeys = %d", len(got.OneTimePreKeys))
	}

	// A republish by the same owner replaces the stored bundle.
	b2 := localBundle(t)
	b2.DeviceID = b.DeviceID
	if err := c.Publish(ctx, b2); err != nil {
		t.Fatalf("republish: %v", err)
	}
	got, err = c.Fetch(ctx, domain.PeerID(b.DeviceID))
	if err != nil {
		t.Fatalf("Fetch after republish: %v", err)
	}
	if got.IdentityPub != b2.IdentityPub {
		t.Fatal("republish did not replace bundle")
	}
}

func TestUpload_RejectsBadSignature(t *testing.T) {
	ts, reg := newServer(t, nil)
	b := localBundle(t)
	b.SignedPreKeySig[0] ^= 0xff

	resp := postJSON(t, ts.URL+"/keys/upload", "", directory.FromBundle(b))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != server.CodeInvalidBundle {
		t.Fatalf("code = %q", code)
	}
	if _, ok, _ := reg.Get(context.Background(), b.DeviceID.String()); ok {
		t.Fatal("rejected bundle was stored")
	}
}

func TestUpload_RejectsMalformedBody(t *testing.T) {
	ts, _ := newServer(t, nil)

	resp, err := http.Post(ts.URL+"/keys/upload", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != server.CodeInvalidRequest {
		t.Fatalf("code = %q", code)
	}

	resp2 := postJSON(t, ts.URL+"/keys/upload", "", directory.BundleDTO{IdentityPub: "!!", SignedPreKeyPub: "AA==", SignedPreKeySig: "AA=="})
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp2.StatusCode)
	}
	if code := errorCode(t, resp2); code != server.CodeInvalidBundle {
		t.Fatalf("code = %q", code)
	}
}

func TestFetch_Miss(t *testing.T) {
	ts, _ := newServer(t, nil)

	resp, err := http.Get(ts.URL + "/keys/for/nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != server.CodeNotFound {
		t.Fatalf("code = %q", code)
	}

	_, err = directory.New(ts.URL, "", 0).Fetch(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAuth_SubjectIsOwner(t *testing.T) {
	const secret = "test-secret"
	ts, _ := newServer(t, func(c *server.Config) { c.JWTSecret = secret })
	ctx := context.Background()
	b := localBundle(t)

	err := directory.New(ts.URL, "", 0).Publish(ctx, b)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized without token, got %v", err)
	}
	err = directory.New(ts.URL, "garbage", 0).Publish(ctx, b)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized with bad token, got %v", err)
	}

	token, err := server.NewAuthenticator(secret, time.Hour).Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c := directory.New(ts.URL, token, 0)
	if err := c.Publish(ctx, b); err != nil {
		t.Fatalf("Publish with token: %v", err)
	}

	// Lookups stay public and are keyed by the token subject.
	got, err := directory.New(ts.URL, "", 0).Fetch(ctx, "alice")
	if err != nil {
		t.Fatalf("Fetch alice: %v", err)
	}
	if got.IdentityPub != b.IdentityPub {
		t.Fatal("wrong bundle under subject")
	}
	if _, err := c.Fetch(ctx, domain.PeerID(b.DeviceID)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("bundle also stored under device id: %v", err)
	}
}

func TestAuthenticator(t *testing.T) {
	if server.NewAuthenticator("", time.Hour) != nil {
		t.Fatal("empty secret should disable auth")
	}
	a := server.NewAuthenticator("k1", time.Hour)
	tok, err := a.Issue("bob")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if sub, err := a.Parse(tok); err != nil || sub != "bob" {
		t.Fatalf("Parse = %q, %v", sub, err)
	}
	if _, err := server.NewAuthenticator("k2", time.Hour).Parse(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("foreign key accepted: %v", err)
	}
	expired, err := server.NewAuthenticator("k1", -time.Minute).Issue("bob")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := a.Parse(expired); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expired token accepted: %v", err)
	}
	if _, err := a.Issue("  "); err == nil {
		t.Fatal("blank subject accepted")
	}
}

func TestRateLimit(t *testing.T) {
	ts, _ := newServer(t, func(c *server.Config) {
		c.RateLimitRPS = 0.001
		c.RateLimitBurst = 1
	})

	first, err := http.Get(ts.URL + "/keys/for/x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusNotFound {
		t.Fatalf("first status = %d", first.StatusCode)
	}

	second, err := http.Get(ts.URL + "/keys/for/x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", second.StatusCode)
	}

	_, err = directory.New(ts.URL, "", 0).Fetch(context.Background(), "x")
	if !errors.Is(err, domain.ErrRateLimited) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrRateLimited+ErrNotFound, got %v", err)
	}

	// Health and metrics are not limited.
	health, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", health.StatusCode)
	}
}

func TestMapLimiter(t *testing.T) {
	var nilLimiter *server.MapLimiter
	if !nilLimiter.Allow("a", time.Now()) {
		t.Fatal("nil limiter should allow")
	}
	if server.NewMapLimiter(0, 5, 0) != nil {
		t.Fatal("zero rps should disable limiting")
	}

	l := server.NewMapLimiter(1, 2, time.Minute)
	now := time.Now()
	if !l.Allow("a", now) || !l.Allow("a", now) {
		t.Fatal("burst not honoured")
	}
	if l.Allow("a", now) {
		t.Fatal("third call within burst window allowed")
	}
	if !l.Allow("b", now) {
		t.Fatal("keys share a bucket")
	}
	if !l.Allow("a", now.Add(2*time.Second)) {
		t.Fatal("bucket did not refill")
	}
}

func TestMetricsAndRequestID(t *testing.T) {
	ts, _ := newServer(t, nil)
	if err := directory.New(ts.URL, "", 0).Publish(context.Background(), localBundle(t)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("X-Request-Id = %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `hubrr_directory_uploads_total{result="ok"} 1`) {
		t.Fatalf("upload counter missing from metrics:\n%s", body)
	}

	health, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer health.Body.Close()
	if health.Header.Get("X-Request-Id") == "" {
		t.Fatal("no generated request id")
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	for _, k := range []string{"DIRECTORY_ADDR", "DIRECTORY_MODE", "DIRECTORY_BACKEND", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DATABASE_URL", "JWT_SECRET", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "directory.yaml")
	yml := `addr: ":9000"
backend: redis
redis:
  addr: "cache:6379"
  db: 2
tokenTTL: 1h
rateLimit:
  rps: 5
  burst: 7
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DIRECTORY_ADDR", ":9100")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("env should override file addr, got %q", cfg.Addr)
	}
	if cfg.Backend != server.BackendRedis || cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("redis settings = %+v backend %q", cfg.Redis, cfg.Backend)
	}
	if cfg.TokenTTL != time.Hour || cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 7 {
		t.Fatalf("ttl/rate = %v %v %d", cfg.TokenTTL, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if !cfg.AuthEnabled() {
		t.Fatal("JWT_SECRET should enable auth")
	}
}

func TestLoadConfig_Validate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DIRECTORY_BACKEND", "postgres")
	if _, err := server.LoadConfig(""); err == nil {
		t.Fatal("postgres without DATABASE_URL accepted")
	}
	t.Setenv("DIRECTORY_BACKEND", "etcd")
	if _, err := server.LoadConfig(""); err == nil {
		t.Fatal("unknown backend accepted")
	}
	t.Setenv("DIRECTORY_BACKEND", "")
	t.Setenv("RATE_LIMIT_RPS", "fast")
	if _, err := server.LoadConfig(""); err == nil {
		t.Fatal("bad RATE_LIMIT_RPS accepted")
	}
}

func TestNew_WarnsWhenAuthDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := &logger.Logger{Logger: zap.New(core)}

	cfg := server.DefaultConfig()
	server.New(cfg, registry.NewMemory(), l)
	if logs.FilterMessageSnippet("any client can replace any bundle").Len() != 1 {
		t.Fatalf("no auth-off warning; got %v", logs.All())
	}

	cfg.JWTSecret = "s"
	before := logs.Len()
	server.New(cfg, registry.NewMemory(), l)
	if logs.Len() != before {
		t.Fatalf("unexpected warnings with auth on: %v", logs.All()[before:])
	}
}
