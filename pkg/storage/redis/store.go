package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"leaderkill/pkg/storage"
)

// DefaultPrefix namespaces shared files when the locator names no prefix.
const DefaultPrefix = "jobstore:"

func init() {
	storage.Register("redis", Open)
	storage.Register("rediss", Open)
}

// Store keeps each shared file as a plain string key under a prefix.
type Store struct {
	client *redis.Client
	prefix string
}

// StoreConfig holds Redis connection configuration
type StoreConfig struct {
	Options      *redis.Options
	Prefix       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Open parses a redis:// locator. The prefix query parameter is consumed
// here; every other parameter is handed to redis.ParseURL.
func Open(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
	u, err := url.Parse(loc.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis locator: %w", storage.ErrNoSuchStore, err)
	}
	q := u.Query()
	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	q.Del("prefix")
	u.RawQuery = q.Encode()

	ropts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis locator: %w", storage.ErrNoSuchStore, err)
	}
	if ropts.Password == "" {
		ropts.Password = opts.RedisPassword
	}
	if opts.RedisDialTimeout > 0 {
		ropts.DialTimeout = opts.RedisDialTimeout
	}

	return NewWithConfig(ctx, StoreConfig{
		Options:      ropts,
		Prefix:       prefix,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// NewWithConfig connects to Redis and checks that the prefix holds a store.
func NewWithConfig(ctx context.Context, cfg StoreConfig) (*Store, error) {
	ropts := *cfg.Options
	ropts.ReadTimeout = cfg.ReadTimeout
	ropts.WriteTimeout = cfg.WriteTimeout
	return NewFromClient(ctx, redis.NewClient(&ropts), cfg.Prefix)
}

// NewFromClient wraps an existing client. The client is closed if the store
// cannot be resolved.
func NewFromClient(ctx context.Context, client *redis.Client, prefix string) (*Store, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %w", storage.ErrUnavailable, err)
	}

	s := &Store{client: client, prefix: prefix}
	exists, err := s.exists(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	if !exists {
		client.Close()
		return nil, fmt.Errorf("%w: no keys under prefix %q", storage.ErrNoSuchStore, prefix)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// exists reports whether any key lives under the prefix. SCAN may return
// empty pages before the cursor wraps, so it walks until a hit or cursor 0.
func (s *Store) exists(ctx context.Context) (bool, error) {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return false, fmt.Errorf("%w: failed to scan redis: %w", storage.ErrUnavailable, err)
		}
		if len(keys) > 0 {
			return true, nil
		}
		if next == 0 {
			return false, nil
		}
		cursor = next
	}
}

// ReadSharedFile GETs the record key.
func (s *Store) ReadSharedFile(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %w", storage.ErrUnavailable, name, err)
	}
	return data, nil
}

// WriteSharedFile SETs the record key without expiry.
func (s *Store) WriteSharedFile(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	return nil
}
