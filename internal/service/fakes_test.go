package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
)

func payload(t *testing.T, body string) validation.Payload {
	t.Helper()
	p, err := validation.Parse([]byte(body))
	require.NoError(t, err)
	return p
}

type recordedAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (r *recordedAudit) Record(ctx context.Context, entry models.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordedAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type fakeSessions struct {
	stored    map[string]int64
	revoked   []string
	revokeAll []int64
	storeErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{stored: map[string]int64{}}
}

func (f *fakeSessions) Store(ctx context.Context, adminID int64, sessionID string, ttl time.Duration) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.stored[sessionID] = adminID
	return nil
}

func (f *fakeSessions) Exists(ctx context.Context, adminID int64, sessionID string) (bool, error) {
	owner, ok := f.stored[sessionID]
	return ok && owner == adminID, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, adminID int64, sessionID string) error {
	delete(f.stored, sessionID)
	f.revoked = append(f.revoked, sessionID)
	return nil
}

func (f *fakeSessions) RevokeAll(ctx context.Context, adminID int64) error {
	for sid, owner := range f.stored {
		if owner == adminID {
			delete(f.stored, sid)
		}
	}
	f.revokeAll = append(f.revokeAll, adminID)
	return nil
}

type loginCounter struct {
	success, failure int
}

func (c *loginCounter) RecordLogin(success bool) {
	if success {
		c.success++
		return
	}
	c.failure++
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}
