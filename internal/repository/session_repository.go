package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "session"

// SessionRepository indexes issued sessions in Redis so they can be revoked
// before their token expires. With a nil client every call is a no-op and
// sessions are trusted until expiry.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

// Enabled reports whether sessions are tracked server-side.
func (r *SessionRepository) Enabled() bool {
	return r != nil && r.client != nil
}

func sessionKey(adminID int64, sessionID string) string {
	return fmt.Sprintf("%s:%d:%s", sessionKeyPrefix, adminID, sessionID)
}

// Store records a session for ttl.
func (r *SessionRepository) Store(ctx context.Context, adminID int64, sessionID string, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	key := sessionKey(adminID, sessionID)
	if err := r.client.Set(ctx, key, time.Now().UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a session is still active.
func (r *SessionRepository) Exists(ctx context.Context, adminID int64, sessionID string) (bool, error) {
	if !r.Enabled() {
		return true, nil
	}
	key := sessionKey(adminID, sessionID)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Revoke removes a single session.
func (r *SessionRepository) Revoke(ctx context.Context, adminID int64, sessionID string) error {
	if !r.Enabled() {
		return nil
	}
	key := sessionKey(adminID, sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// RevokeAll removes every session of an admin.
func (r *SessionRepository) RevokeAll(ctx context.Context, adminID int64) error {
	if !r.Enabled() {
		return nil
	}
	pattern := fmt.Sprintf("%s:%d:*", sessionKeyPrefix, adminID)

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	removed := 0
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}

	r.logger.Debug("sessions revoked", zap.Int64("admin_id", adminID), zap.Int("count", removed))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *SessionRepository) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
