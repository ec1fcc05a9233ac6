package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hubrr/internal/domain"
)

// DefaultBase is used when no base URL is configured.
const DefaultBase = "https://api.hubrr.com/api"

// Client talks to the directory over HTTP.
type Client struct {
	Base  string
	Token string
	HTTP  *http.Client
}

// New returns a Client for base. A zero timeout leaves requests bounded only
// by their context.
func New(base, token string, timeout time.Duration) *Client {
	return &Client{
		Base:  NormalizeBase(base),
		Token: token,
		HTTP:  &http.Client{Timeout: timeout},
	}
}

// NormalizeBase trims trailing slashes and falls back to DefaultBase.
func NormalizeBase(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return DefaultBase
	}
	return base
}

// StatusError is a non-2xx answer from the directory.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("directory %s %s: %s", e.Method, e.Path, e.Status)
}

// Publish uploads b. The bundle must be complete.
func (c *Client) Publish(ctx context.Context, b domain.PublicKeyBundle) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}
	if err := c.post(ctx, "/keys/upload", FromBundle(b), nil); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}
	return nil
}

// Fetch returns peer's bundle. Any non-2xx status is reported as
// domain.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, peer domain.PeerID) (domain.PublicKeyBundle, error) {
	var dto BundleDTO
	err := c.getJSON(ctx, "/keys/for/"+url.PathEscape(peer.String()), &dto)
	var se *StatusError
	if errors.As(err, &se) {
		return domain.PublicKeyBundle{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if err != nil {
		return domain.PublicKeyBundle{}, err
	}
	return dto.Bundle()
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		se := &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode, Status: resp.Status}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrUnauthorized, se)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, se)
		}
		return se
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ domain.DirectoryClient = (*Client)(nil)
