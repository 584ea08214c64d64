package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per user identity. A SET of the whole encoded
// record gives the same wholesale-rewrite guarantee as the file backend.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// RedisOptions configure a RedisStore.
type RedisOptions struct {
	// Prefix namespaces the conversation keys. Defaults to "chatmesh:dialog:".
	Prefix string
	// Timeout bounds each redis command. Defaults to 5s.
	Timeout time.Duration
}

// NewRedisStore wraps an existing client. The store does not own the client
// lifecycle; callers close it.
func NewRedisStore(client *redis.Client, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{
		Prefix:  "chatmesh:dialog:",
		Timeout: 5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, prefix: opts.Prefix, timeout: opts.Timeout}
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) key(userID string) string { return s.prefix + userID }

// Load fetches and decodes the record for userID.
func (s *RedisStore) Load(userID string) (Record, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("load record for %s: %w", userID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode record for %s: %w", userID, err)
	}
	return rec, true, nil
}

// LoadAll scans the key space under the prefix.
func (s *RedisStore) LoadAll() (map[string]Record, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	out := make(map[string]Record)
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		userID := strings.TrimPrefix(iter.Val(), s.prefix)
		rec, ok, err := s.Load(userID)
		if err != nil {
			return nil, err
		}
		if ok {
			out[userID] = rec
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return out, nil
}

// Save encodes and rewrites the record for userID.
func (s *RedisStore) Save(userID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", userID, err)
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("save record for %s: %w", userID, err)
	}
	return nil
}

// Delete removes the key for userID.
func (s *RedisStore) Delete(userID string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete record for %s: %w", userID, err)
	}
	return nil
}
