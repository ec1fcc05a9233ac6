package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"hubrr/internal/domain"
)

const (
	keystoreFile = "keystore.json"
	lockSuffix   = ".lock"

	lockRetry = 10 * time.Millisecond
)

// FileStore keeps every key name in one JSON map file under dir.
// With a passphrase the whole map is sealed before it touches the disk.
//
// Every operation holds an advisory lock on keystore.json.lock for its whole
// read-modify-write, so processes sharing dir see one winner per key name.
type FileStore struct {
	dir    string
	sealer *sealer // nil when no passphrase is set
	mu     sync.Mutex
	flock  *flock.Flock
}

// NewFileStore returns a FileStore rooted at dir. An empty passphrase stores
// the map in the clear (0600).
func NewFileStore(dir, passphrase string) *FileStore {
	s := &FileStore{dir: dir, flock: flock.New(filepath.Join(dir, keystoreFile+lockSuffix))}
	if passphrase != "" {
		s.sealer = newSealer(passphrase, defaultKDF)
	}
	return s
}

func (s *FileStore) path() string { return filepath.Join(s.dir, keystoreFile) }

// lock takes mu and the file lock (shared when exclusive is false) and
// returns the matching release func.
func (s *FileStore) lock(ctx context.Context, exclusive bool) (func(), error) {
	s.mu.Lock()
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.flock.TryLockContext(ctx, lockRetry)
	} else {
		ok, err = s.flock.TryRLockContext(ctx, lockRetry)
	}
	if err == nil && !ok {
		err = fmt.Errorf("lock %s: not acquired", s.flock.Path())
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return func() {
		_ = s.flock.Unlock()
		s.mu.Unlock()
	}, nil
}

// load reads the whole map. Caller holds the store lock.
func (s *FileStore) load() (map[string][]byte, error) {
	m := make(map[string][]byte)
	b, ok, err := readFile(s.path())
	if err != nil || !ok {
		return m, err
	}
	if s.sealer != nil {
		if b, err = s.sealer.unseal(b); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// save replaces the whole map. Caller holds the store lock.
func (s *FileStore) save(m map[string][]byte) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if s.sealer != nil {
		if b, err = s.sealer.seal(b); err != nil {
			return err
		}
	}
	return replaceFile(s.path(), b)
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	unlock, err := s.lock(ctx, false)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	defer unlock()

	m, err := s.load()
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	v, ok := m[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *FileStore) Put(ctx context.Context, name string, value []byte) error {
	unlock, err := s.lock(ctx, true)
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", domain.ErrStorage, name, err)
	}
	defer unlock()

	m, err := s.load()
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", domain.ErrStorage, name, err)
	}
	m[name] = append([]byte(nil), value...)
	if err := s.save(m); err != nil {
		return fmt.Errorf("%w: put %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *FileStore) PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error) {
	unlock, err := s.lock(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%w: claim %s: %v", domain.ErrStorage, name, err)
	}
	defer unlock()

	m, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("%w: claim %s: %v", domain.ErrStorage, name, err)
	}
	if existing, ok := m[name]; ok {
		return append([]byte(nil), existing...), nil
	}
	m[name] = append([]byte(nil), value...)
	if err := s.save(m); err != nil {
		return nil, fmt.Errorf("%w: claim %s: %v", domain.ErrStorage, name, err)
	}
	return append([]byte(nil), value...), nil
}

// Compile-time assertion that FileStore implements domain.KeyStore.
var _ domain.KeyStore = (*FileStore)(nil)
