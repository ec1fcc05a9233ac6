package message

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hubrr/internal/crypto"
	"hubrr/internal/domain"
)

// PreKeySource yields the local signed pre-key. ok is false when it is
// absent or cannot be read.
type PreKeySource interface {
	SignedPreKey(ctx context.Context) (spk domain.SignedPreKey, ok bool)
}

// Service encrypts to peers fetched from the directory and decrypts with the
// local signed pre-key.
type Service struct {
	fetcher domain.BundleFetcher
	prekeys PreKeySource
	log     *zap.Logger
}

// New constructs a Message Service.
func New(fetcher domain.BundleFetcher, prekeys PreKeySource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{fetcher: fetcher, prekeys: prekeys, log: log.Named("message")}
}

// Encrypt fetches peer's bundle, checks that its signed pre-key carries a
// valid identity signature and seals plaintext to it. The result is the
// base64 packed ciphertext.
func (s *Service) Encrypt(ctx context.Context, peer domain.PeerID, plaintext string) (string, error) {
	if s.fetcher == nil {
		return "", fmt.Errorf("%w: %s: no directory configured", domain.ErrPeerKeyUnavailable, peer)
	}
	b, err := s.fetcher.Fetch(ctx, peer)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrPeerKeyUnavailable, peer, err)
	}
	if err := b.ValidateKeys(); err != nil {
		return "", fmt.Errorf("peer %s: %w", peer, err)
	}
	if !crypto.VerifySignedPreKey(b) {
		return "", fmt.Errorf("peer %s: %w: bad signed prekey signature", peer, domain.ErrInvalidBundle)
	}

	p, err := crypto.SealFor(b.SignedPreKeyPub, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	return p.Encode(), nil
}

// Decrypt opens packed with the local signed pre-key.
func (s *Service) Decrypt(ctx context.Context, packed string) (string, bool) {
	if s.prekeys == nil {
		return "", false
	}
	spk, ok := s.prekeys.SignedPreKey(ctx)
	if !ok {
		s.log.Debug("decrypt: no local signed prekey")
		return "", false
	}
	pt, ok := Open(packed, spk.Sec)
	if !ok {
		s.log.Debug("decrypt: cannot open", zap.Int("len", len(packed)))
	}
	return pt, ok
}

// Open decodes packed and opens it with secret. It is the stateless core of
// Decrypt.
func Open(packed string, secret domain.X25519Private) (string, bool) {
	p, ok := domain.DecodePackedCiphertext(packed)
	if !ok {
		return "", false
	}
	return crypto.OpenString(p, secret)
}

var _ domain.MessageService = (*Service)(nil)
