package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/property-game/game/service"
)

// DefaultRedisPrefix namespaces session keys
const DefaultRedisPrefix = "property-game:session:"

// RedisPersistence implements SessionPersistence by storing each session's
// save file text under <prefix><id>
type RedisPersistence struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	rules   service.RulesManager
}

// NewRedisPersistence creates a Redis-backed persistence layer. A zero ttl
// keeps sessions forever.
func NewRedisPersistence(client redis.Cmdable, prefix string, ttl time.Duration, rules service.RulesManager) *RedisPersistence {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisPersistence{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: 5 * time.Second,
		rules:   rules,
	}
}

// ConnectRedis opens a client for addr and checks it answers
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// Save stores the session text
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	ctx, cancel := rp.context()
	defer cancel()
	if err := rp.client.Set(ctx, rp.key(session.ID), data, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}

// Load fetches and decodes a session
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := rp.context()
	defer cancel()

	data, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}
	return decodeSession(id, data, rp.rules)
}

// Delete removes a session key
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.context()
	defer cancel()

	n, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll scans for every key under the prefix
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.context()
	defer cancel()

	var ids []string
	iter := rp.client.Scan(ctx, 0, rp.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), rp.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

// Refresh resets the key TTL so sessions that are only read do not expire
func (rp *RedisPersistence) Refresh(id string) error {
	if rp.ttl <= 0 {
		return nil
	}
	ctx, cancel := rp.context()
	defer cancel()

	ok, err := rp.client.Expire(ctx, rp.key(id), rp.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session %s: %w", id, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Exists checks whether the session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := rp.context()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + strings.ToLower(id)
}

func (rp *RedisPersistence) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}
