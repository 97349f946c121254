package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rpatil/bankflow/pkg/api"
)

// RedisSessionStore is a SessionStore backed by Redis. Sessions are kept
// as JSON values under a key prefix, with an index set for listing.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Ensure RedisSessionStore implements SessionStore.
var _ SessionStore = (*RedisSessionStore)(nil)

// RedisOption customizes a RedisSessionStore.
type RedisOption func(*RedisSessionStore)

// WithTTL sets the expiration for stored sessions. Zero means no expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisSessionStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored sessions.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisSessionStore) {
		s.prefix = prefix
	}
}

// NewRedisSessionStore creates a store from an existing Redis client.
func NewRedisSessionStore(client *redis.Client, opts ...RedisOption) *RedisSessionStore {
	store := &RedisSessionStore{
		client: client,
		prefix: "bankflow:session:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisSessionStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisSessionStore) write(sess *api.Session) error {
	ctx := context.Background()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(sess.ID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), sess.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) SaveSession(sess *api.Session) error {
	return s.write(sess)
}

func (s *RedisSessionStore) UpdateSession(sess *api.Session) error {
	ctx := context.Background()

	exists, err := s.client.Exists(ctx, s.key(sess.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	return s.write(sess)
}

func (s *RedisSessionStore) GetSession(id string) (*api.Session, error) {
	ctx := context.Background()

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess api.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.Form == nil {
		sess.Form = make(map[string]string)
	}
	return &sess, nil
}

func (s *RedisSessionStore) DeleteSession(id string) error {
	ctx := context.Background()

	deleted, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}

	return s.client.SRem(ctx, s.indexKey(), id).Err()
}

func (s *RedisSessionStore) ListSessions(filter SessionFilter) ([]*api.Session, error) {
	ctx := context.Background()

	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}

	var result []*api.Session
	for _, id := range ids {
		sess, err := s.GetSession(id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// Expired value left behind in the index.
				continue
			}
			return nil, err
		}
		if filter.Step != "" && sess.Step != filter.Step {
			continue
		}
		result = append(result, sess)
	}

	return result, nil
}
