package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slices"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces the keys of the store, "gridlock" if empty.
	Prefix string
}

// RedisStore implements Store using Redis. Entries are JSON values under
// <prefix>:entry:<name>, and their names are kept in the set <prefix>:entries.
type RedisStore struct {
	client      *redis.Client
	entryPrefix string
	indexKey    string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "gridlock"
	}

	return &RedisStore{
		client:      client,
		entryPrefix: prefix + ":entry:",
		indexKey:    prefix + ":entries",
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, e *Entry) error {
	if err := e.check(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.entryPrefix+e.Name, data, 0)
	pipe.SAdd(ctx, s.indexKey, e.Name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (*Entry, error) {
	data, err := s.client.Get(ctx, s.entryPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}

	return &e, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.entryPrefix+name)
	pipe.SRem(ctx, s.indexKey, name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
