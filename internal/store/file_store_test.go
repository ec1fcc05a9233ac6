package store_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"hubrr/internal/domain"
	"hubrr/internal/store"
)

func backends(t *testing.T) map[string]domain.KeyStore {
	t.Helper()
	sq, err := store.OpenSQLite(filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]domain.KeyStore{
		"file":   store.NewFileStore(t.TempDir(), ""),
		"sealed": store.NewFileStore(t.TempDir(), "pass"),
		"sqlite": sq,
		"memory": store.NewMemoryStore(),
	}
}

func TestKeyStore_GetPut(t *testing.T) {
	ctx := context.Background()
	for name, ks := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := ks.Get(ctx, store.KeyDeviceID); err != nil || ok {
				t.Fatalf("want absent, got ok=%v err=%v", ok, err)
			}
			if err := ks.Put(ctx, store.KeyDeviceID, []byte("dev-1")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := ks.Put(ctx, store.KeyDeviceID, []byte("dev-2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := ks.Get(ctx, store.KeyDeviceID)
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if string(got) != "dev-2" {
				t.Fatalf("want dev-2, got %q", got)
			}
		})
	}
}

func TestKeyStore_PutIfAbsent_FirstWriterWins(t *testing.T) {
	ctx := context.Background()
	for name, ks := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := ks.PutIfAbsent(ctx, store.KeyIdentity, []byte("first"))
			if err != nil {
				t.Fatalf("claim: %v", err)
			}
			if string(got) != "first" {
				t.Fatalf("want first, got %q", got)
			}
			got, err = ks.PutIfAbsent(ctx, store.KeyIdentity, []byte("second"))
			if err != nil {
				t.Fatalf("second claim: %v", err)
			}
			if string(got) != "first" {
				t.Fatalf("second claim overwrote: %q", got)
			}
		})
	}
}

func TestKeyStore_PutIfAbsent_Concurrent(t *testing.T) {
	ctx := context.Background()
	ks := store.NewFileStore(t.TempDir(), "")

	const n = 16
	results := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := ks.PutIfAbsent(ctx, store.KeySignedPreKey, []byte{byte(i)})
			if err != nil {
				t.Errorf("claim %d: %v", i, err)
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if !bytes.Equal(results[i], results[0]) {
			t.Fatalf("callers saw different winners: %v vs %v", results[0], results[i])
		}
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if err := store.NewFileStore(dir, "pass").Put(ctx, store.KeyReady, []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.NewFileStore(dir, "pass").Get(ctx, store.KeyReady)
	if err != nil || !ok || string(got) != "1" {
		t.Fatalf("reopen: got %q ok=%v err=%v", got, ok, err)
	}
}

func TestFileStore_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if err := store.NewFileStore(dir, "correct").Put(ctx, store.KeyDeviceID, []byte("dev")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := store.NewFileStore(dir, "wrong").Get(ctx, store.KeyDeviceID); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
	if err := store.NewFileStore(dir, "wrong").Put(ctx, store.KeyDeviceID, []byte("x")); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("want ErrStorage on write, got %v", err)
	}
}

func TestFileStore_FileMode(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := store.NewFileStore(dir, "").Put(ctx, store.KeyDeviceID, []byte("dev")); err != nil {
		t.Fatalf("put: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dir, "keystore.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("want 0600, got %v", fi.Mode().Perm())
	}
}

func TestFileStore_SealedAtRest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ks := store.NewFileStore(dir, "pass")
	path := filepath.Join(dir, "keystore.json")

	if err := ks.Put(ctx, store.KeyIdentity, []byte("identity-secret-material")); err != nil {
		t.Fatalf("put: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(first, []byte("identity-secret-material")) || bytes.Contains(first, []byte(store.KeyIdentity)) {
		t.Fatal("sealed keystore leaks plaintext")
	}

	if err := ks.Put(ctx, store.KeyIdentity, []byte("identity-secret-material")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("identical rewrite produced identical ciphertext")
	}
}

func TestFileStore_SharedDirOneWinner(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	stores := []*store.FileStore{
		store.NewFileStore(dir, ""),
		store.NewFileStore(dir, ""),
	}

	const perStore = 8
	results := make([][]byte, 2*perStore)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ks := stores[i%2]
			v, err := ks.PutIfAbsent(ctx, store.KeyDeviceID, []byte{byte(i)})
			if err != nil {
				t.Errorf("claim %d: %v", i, err)
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[i], results[0]) {
			t.Fatalf("stores sharing a directory saw different winners: %v vs %v", results[0], results[i])
		}
	}
	for i, ks := range stores {
		got, ok, err := ks.Get(ctx, store.KeyDeviceID)
		if err != nil || !ok || !bytes.Equal(got, results[0]) {
			t.Fatalf("store %d reads %v ok=%v err=%v, want %v", i, got, ok, err, results[0])
		}
	}
}
