package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"hubrr/internal/directory"
)

// Key pattern:
// - bundle:{owner} - latest published bundle, no TTL

// RedisConfig selects the Redis instance.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client for cfg.
func NewRedisClient(cfg RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Redis stores bundles as JSON strings.
type Redis struct {
	client *goredis.Client
}

func NewRedis(client *goredis.Client) *Redis { return &Redis{client: client} }

func bundleKey(owner string) string { return fmt.Sprintf("bundle:%s", owner) }

func (r *Redis) Put(ctx context.Context, owner string, b directory.BundleDTO) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, bundleKey(owner), data, 0).Err()
}

func (r *Redis) Get(ctx context.Context, owner string) (directory.BundleDTO, bool, error) {
	data, err := r.client.Get(ctx, bundleKey(owner)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return directory.BundleDTO{}, false, nil
	}
	if err != nil {
		return directory.BundleDTO{}, false, err
	}
	var b directory.BundleDTO
	if err := json.Unmarshal(data, &b); err != nil {
		return directory.BundleDTO{}, false, err
	}
	return b, true, nil
}

var _ Registry = (*Redis)(nil)
