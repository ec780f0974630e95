package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/flowchart/pkg/observability"
)

// DefaultRedisPrefix namespaces draft keys.
const DefaultRedisPrefix = "flowchart:draft:"

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each draft as a JSON string key. Expiry is left to Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultRedisPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Draft, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.Draft().OnDraftLoaded(ctx, s.Backend(), id, false)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	// Keys written already expired live for a second.
	if d.IsExpired() {
		observability.Draft().OnDraftLoaded(ctx, s.Backend(), id, false)
		return nil, nil
	}
	d.Diagram = d.Diagram.Clone()
	observability.Draft().OnDraftLoaded(ctx, s.Backend(), id, true)
	return &d, nil
}

func (s *RedisStore) Set(ctx context.Context, d *Draft) (err error) {
	defer func() { observability.Draft().OnDraftSaved(ctx, s.Backend(), d.ID, err) }()

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(d.ID), data, d.remaining()).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", d.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

// List scans the key prefix. Keys that expire mid-scan are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*Draft, error) {
	var out []*Draft
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get %s: %w", iter.Val(), err)
		}
		var d Draft
		if err := json.Unmarshal(data, &d); err != nil || d.IsExpired() {
			continue
		}
		out = append(out, &d)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sortDrafts(out)
	return out, nil
}

// Cleanup is a no-op: keys carry their own TTL.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Backend() string { return "redis" }

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
