package keys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"hubrr/internal/crypto"
	"hubrr/internal/domain"
	"hubrr/internal/store"
	"hubrr/internal/util/memzero"
)

// ErrNoIdentity is returned by read-only accessors before EnsureKeys ran.
var ErrNoIdentity = errors.New("no local identity; run EnsureKeys first")

// Service owns the device's key material.
type Service struct {
	store     domain.KeyStore
	publisher domain.BundlePublisher
	log       *zap.Logger

	group singleflight.Group
	now   func() time.Time
}

// New returns a Service persisting to ks and publishing through pub.
// A nil logger discards output.
func New(ks domain.KeyStore, pub domain.BundlePublisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: ks, publisher: pub, log: log.Named("keys"), now: time.Now}
}

// material is everything EnsureKeys derives from the store.
type material struct {
	deviceID domain.DeviceID
	identity domain.IdentityKeyPair
	spk      domain.SignedPreKey
	oneTime  []domain.X25519Public
}

func (m material) bundle() domain.PublicKeyBundle {
	return domain.PublicKeyBundle{
		DeviceID:        m.deviceID,
		IdentityPub:     m.identity.Pub,
		SignedPreKeyPub: m.spk.Pub,
		SignedPreKeySig: append([]byte(nil), m.spk.Sig...),
		OneTimePreKeys:  append([]domain.X25519Public(nil), m.oneTime...),
	}
}

// EnsureKeys creates whatever key material is missing, republishes the
// public bundle and returns the local view of the keys.
//
// If publishing fails the error wraps domain.ErrPublish and the returned
// LocalKeys are still valid: generated material stays in the store and a
// later call publishes it again.
//
// Concurrent callers share one run. That run is detached from any single
// caller's cancellation; a caller whose ctx ends stops waiting and gets
// ctx.Err() while the others still receive the result.
func (s *Service) EnsureKeys(ctx context.Context) (domain.LocalKeys, error) {
	ch := s.group.DoChan("ensure", func() (any, error) {
		return s.ensure(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return domain.LocalKeys{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.log.Debug("ensure keys coalesced")
		}
		keys, _ := r.Val.(domain.LocalKeys)
		return keys, r.Err
	}
}

func (s *Service) ensure(ctx context.Context) (domain.LocalKeys, error) {
	m, err := s.materialize(ctx)
	if err != nil {
		return domain.LocalKeys{}, err
	}

	keys := domain.LocalKeys{
		DeviceID:        m.deviceID,
		IdentityPub:     m.identity.Pub,
		SignedPreKeySec: m.spk.Sec,
		Bundle:          m.bundle(),
	}
	memzero.Zero(m.identity.Sec[:])

	if err := keys.Bundle.Validate(); err != nil {
		return keys, err
	}
	if s.publisher == nil {
		return keys, fmt.Errorf("%w: no directory configured", domain.ErrPublish)
	}
	if err := s.publisher.Publish(ctx, keys.Bundle); err != nil {
		s.log.Warn("publish bundle", zap.String("device_id", keys.DeviceID.String()), zap.Error(err))
		if errors.Is(err, domain.ErrPublish) {
			return keys, err
		}
		return keys, fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}
	if err := s.store.Put(ctx, store.KeyReady, []byte("1")); err != nil {
		return keys, err
	}

	s.log.Info("bundle published",
		zap.String("device_id", keys.DeviceID.String()),
		zap.String("fingerprint", crypto.Fingerprint(keys.IdentityPub).String()),
		zap.Int("one_time_prekeys", len(keys.Bundle.OneTimePreKeys)))
	return keys, nil
}

// materialize loads each piece of key material, generating and claiming it
// when absent.
func (s *Service) materialize(ctx context.Context) (material, error) {
	var m material

	raw, err := s.claim(ctx, store.KeyDeviceID, func() ([]byte, error) {
		return []byte(s.newDeviceID()), nil
	})
	if err != nil {
		return m, err
	}
	m.deviceID = domain.DeviceID(raw)

	raw, err = s.claim(ctx, store.KeyIdentity, func() ([]byte, error) {
		sec, pub, err := crypto.GenerateEd25519()
		if err != nil {
			return nil, err
		}
		defer memzero.Zero(sec[:])
		return encodeIdentity(domain.IdentityKeyPair{Pub: pub, Sec: sec})
	})
	if err != nil {
		return m, err
	}
	if m.identity, err = decodeIdentity(raw); err != nil {
		return m, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, store.KeyIdentity, err)
	}

	raw, err = s.claim(ctx, store.KeySignedPreKey, func() ([]byte, error) {
		sec, pub, err := crypto.GenerateX25519()
		if err != nil {
			return nil, err
		}
		defer memzero.Zero(sec[:])
		sig := crypto.SignEd25519(m.identity.Sec, pub.Slice())
		return encodeSignedPreKey(domain.SignedPreKey{Pub: pub, Sec: sec, Sig: sig})
	})
	if err != nil {
		return m, err
	}
	if m.spk, err = decodeSignedPreKey(raw); err != nil {
		return m, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, store.KeySignedPreKey, err)
	}

	raw, err = s.claim(ctx, store.KeyOneTimePreKeys, func() ([]byte, error) {
		pairs, err := crypto.GenerateKeyPairs(domain.OneTimePreKeyBatchSize)
		if err != nil {
			return nil, err
		}
		pubs := make([]domain.X25519Public, len(pairs))
		for i := range pairs {
			pubs[i] = pairs[i].Pub
			memzero.Zero(pairs[i].Sec[:])
		}
		return encodeOneTime(pubs)
	})
	if err != nil {
		return m, err
	}
	if m.oneTime, err = decodeOneTime(raw); err != nil {
		return m, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, store.KeyOneTimePreKeys, err)
	}

	return m, nil
}

// claim returns the value stored under name, generating one with gen when
// it is absent. Read failures count as absent. The store decides the
// winner, so concurrent claimers all see the same value.
func (s *Service) claim(ctx context.Context, name string, gen func() ([]byte, error)) ([]byte, error) {
	v, ok, err := s.store.Get(ctx, name)
	if err != nil {
		s.log.Warn("key store read failed; treating as absent", zap.String("name", name), zap.Error(err))
	} else if ok {
		return v, nil
	}

	fresh, err := gen()
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	won, err := s.store.PutIfAbsent(ctx, name, fresh)
	if err != nil {
		return nil, err
	}
	s.log.Debug("key material created", zap.String("name", name))
	return won, nil
}

func (s *Service) newDeviceID() string {
	r := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("dev-%s-%d", r, s.now().UnixMilli())
}

// LocalBundle returns the public bundle without publishing it, creating key
// material first if needed.
func (s *Service) LocalBundle(ctx context.Context) (domain.PublicKeyBundle, error) {
	ch := s.group.DoChan("materialize", func() (any, error) {
		return s.materialize(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return domain.PublicKeyBundle{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return domain.PublicKeyBundle{}, r.Err
		}
		return r.Val.(material).bundle(), nil
	}
}

// Fingerprint returns the short fingerprint of the identity public key.
func (s *Service) Fingerprint(ctx context.Context) (domain.Fingerprint, error) {
	raw, ok, err := s.store.Get(ctx, store.KeyIdentity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if !ok {
		return "", ErrNoIdentity
	}
	id, err := decodeIdentity(raw)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, store.KeyIdentity, err)
	}
	memzero.Zero(id.Sec[:])
	return crypto.Fingerprint(id.Pub), nil
}

// Ready reports whether a bundle has been published successfully at least once.
func (s *Service) Ready(ctx context.Context) (bool, error) {
	v, ok, err := s.store.Get(ctx, store.KeyReady)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return ok && string(v) == "1", nil
}

// SignedPreKey returns the stored signed pre-key. ok is false when it is
// absent or unreadable.
func (s *Service) SignedPreKey(ctx context.Context) (domain.SignedPreKey, bool) {
	raw, ok, err := s.store.Get(ctx, store.KeySignedPreKey)
	if err != nil {
		s.log.Debug("signed prekey unreadable", zap.Error(err))
		return domain.SignedPreKey{}, false
	}
	if !ok {
		return domain.SignedPreKey{}, false
	}
	spk, err := decodeSignedPreKey(raw)
	if err != nil {
		s.log.Debug("signed prekey corrupt", zap.Error(err))
		return domain.SignedPreKey{}, false
	}
	return spk, true
}

// DeviceID returns the stored device id, if any.
func (s *Service) DeviceID(ctx context.Context) (domain.DeviceID, bool) {
	raw, ok, err := s.store.Get(ctx, store.KeyDeviceID)
	if err != nil || !ok {
		return "", false
	}
	return domain.DeviceID(raw), true
}

// Compile-time assertion that Service implements domain.KeyService.
var _ domain.KeyService = (*Service)(nil)
