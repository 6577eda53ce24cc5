package storage

import (
	"context"
	"sync"
	"time"

	"github.com/sitariff/sitariff/pkg/types"
)

// Memory is an in-process Database for local runs and tests. Nothing survives
// a restart.
type Memory struct {
	mu        sync.RWMutex
	settings  types.Settings
	version   int
	revisions []types.SettingsRevision

	now func() time.Time
}

var _ Database = (*Memory)(nil)

// NewMemory returns an empty in-memory Database.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// GetSettings returns the last saved settings.
func (m *Memory) GetSettings(ctx context.Context) (types.Settings, int, error) {
	if err := ctx.Err(); err != nil {
		return types.Settings{}, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, m.version, nil
}

// SetSettings replaces the settings and appends a revision.
func (m *Memory) SetSettings(ctx context.Context, settings types.Settings, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	m.version = version
	m.revisions = append(m.revisions, types.SettingsRevision{
		Timestamp: m.now().UTC(),
		Version:   version,
		Settings:  settings,
	})
	return nil
}

// ListSettingsRevisions returns up to limit revisions, newest first. A limit
// of zero or less returns all of them.
func (m *Memory) ListSettingsRevisions(ctx context.Context, limit int) ([]types.SettingsRevision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.revisions)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]types.SettingsRevision, 0, n)
	for i := len(m.revisions) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.revisions[i])
	}
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
