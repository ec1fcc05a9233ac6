package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"hubrr/internal/directory"
	"hubrr/internal/domain"
	keysvc "hubrr/internal/services/keys"
	messagesvc "hubrr/internal/services/message"
	"hubrr/internal/store"
	"hubrr/internal/transport"
)

// Wire bundles the store, services and clients for the CLI.
type Wire struct {
	Config    Config
	Store     domain.KeyStore
	Keys      *keysvc.Service
	Messages  *messagesvc.Service
	Directory *directory.Client
	Log       *zap.Logger

	closers []func() error
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *zap.Logger) (*Wire, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &Wire{Config: cfg, Log: log}

	switch cfg.Store {
	case StoreMemory:
		w.Store = store.NewMemoryStore()
	case StoreSQLite:
		sq, err := store.OpenSQLite(filepath.Join(cfg.Home, "keystore.db"))
		if err != nil {
			return nil, err
		}
		w.Store = sq
		w.closers = append(w.closers, sq.Close)
	default:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create home: %w", err)
		}
		w.Store = store.NewFileStore(cfg.Home, cfg.Passphrase)
	}

	w.Directory = directory.New(cfg.APIBase, cfg.Token, cfg.HTTPTimeout)
	w.Keys = keysvc.New(w.Store, w.Directory, log)
	w.Messages = messagesvc.New(w.Directory, w.Keys, log)
	return w, nil
}

// DialRelay opens a relay connection identified as peer. An empty peer uses
// the local device id.
func (w *Wire) DialRelay(ctx context.Context, peer domain.PeerID) (*transport.Conn, error) {
	if peer == "" {
		id, ok := w.Keys.DeviceID(ctx)
		if !ok {
			return nil, fmt.Errorf("no device id; run init first")
		}
		peer = domain.PeerID(id)
	}
	return transport.Dial(ctx, w.Config.WSURL, peer, w.Config.Token)
}

// Close releases stores that hold OS resources.
func (w *Wire) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
