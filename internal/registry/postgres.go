package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hubrr/internal/directory"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS key_bundles (
	owner             TEXT PRIMARY KEY,
	device_id         TEXT NOT NULL,
	identity_pub      TEXT NOT NULL,
	signed_prekey_pub TEXT NOT NULL,
	signed_prekey_sig TEXT NOT NULL,
	one_time_prekeys  TEXT[] NOT NULL DEFAULT '{}',
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Postgres stores bundles in the key_bundles table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the schema if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("registry: create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) Put(ctx context.Context, owner string, b directory.BundleDTO) error {
	otks := b.OneTimePreKeys
	if otks == nil {
		otks = []string{}
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO key_bundles (owner, device_id, identity_pub, signed_prekey_pub, signed_prekey_sig, one_time_prekeys, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (owner) DO UPDATE SET
	device_id = EXCLUDED.device_id,
	identity_pub = EXCLUDED.identity_pub,
	signed_prekey_pub = EXCLUDED.signed_prekey_pub,
	signed_prekey_sig = EXCLUDED.signed_prekey_sig,
	one_time_prekeys = EXCLUDED.one_time_prekeys,
	updated_at = now()`,
		owner, b.DeviceID, b.IdentityPub, b.SignedPreKeyPub, b.SignedPreKeySig, otks)
	return err
}

func (p *Postgres) Get(ctx context.Context, owner string) (directory.BundleDTO, bool, error) {
	var b directory.BundleDTO
	err := p.pool.QueryRow(ctx, `
SELECT device_id, identity_pub, signed_prekey_pub, signed_prekey_sig, one_time_prekeys
FROM key_bundles WHERE owner = $1`, owner).
		Scan(&b.DeviceID, &b.IdentityPub, &b.SignedPreKeyPub, &b.SignedPreKeySig, &b.OneTimePreKeys)
	if errors.Is(err, pgx.ErrNoRows) {
		return directory.BundleDTO{}, false, nil
	}
	if err != nil {
		return directory.BundleDTO{}, false, err
	}
	return b, true, nil
}

var _ Registry = (*Postgres)(nil)
