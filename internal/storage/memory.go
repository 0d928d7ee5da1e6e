package storage

import (
	"context"
	"sync"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// MemoryGateway is an in-process gateway. It backs tests and the default
// single-session runs where nothing needs to survive the process.
type MemoryGateway struct {
	mu      sync.RWMutex
	records map[string]*types.PostRecord
	order   []string // insertion order, for stable GetAll output
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{records: make(map[string]*types.PostRecord)}
}

// Put implements Gateway with upsert semantics.
func (m *MemoryGateway) Put(_ context.Context, rec *types.PostRecord) error {
	if !rec.Valid() {
		return types.ErrInvalidRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

// Get implements Gateway.
func (m *MemoryGateway) Get(_ context.Context, id string) (*types.PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// GetAll implements Gateway, returning records in insertion order.
func (m *MemoryGateway) GetAll(_ context.Context) ([]*types.PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.PostRecord, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.records[id]
		out = append(out, &cp)
	}
	return out, nil
}

// GetAllByPlatform implements Gateway.
func (m *MemoryGateway) GetAllByPlatform(_ context.Context, p types.Platform) ([]*types.PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.PostRecord
	for _, id := range m.order {
		if rec := m.records[id]; rec.Platform == p {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Count implements Gateway.
func (m *MemoryGateway) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// DeleteAll implements Gateway.
func (m *MemoryGateway) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*types.PostRecord)
	m.order = nil
	return nil
}

// Close implements Gateway.
func (m *MemoryGateway) Close(context.Context) error { return nil }
