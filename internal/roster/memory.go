package roster

import (
	"context"
	"sync"

	"github.com/counterworks/counterlog/internal/ledger"
)

// Memory is an in-memory directory for tests and single-file deployments.
type Memory struct {
	mu      sync.RWMutex
	members map[string]Member
}

// NewMemory creates a Memory directory holding the given members.
func NewMemory(members ...Member) *Memory {
	m := &Memory{members: make(map[string]Member, len(members))}
	for _, mem := range members {
		m.members[mem.ID] = mem
	}
	return m
}

// FindByID returns the active member with the given id, or ErrNotFound.
func (m *Memory) FindByID(_ context.Context, id string) (*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mem, ok := m.members[id]
	if !ok || mem.Status != StatusActive {
		return nil, ErrNotFound
	}
	out := mem
	return &out, nil
}

// List returns all active members.
func (m *Memory) List(_ context.Context) ([]Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Member
	for _, mem := range m.members {
		if mem.Status == StatusActive {
			out = append(out, mem)
		}
	}
	return out, nil
}

// FindActor implements ledger.Directory.
func (m *Memory) FindActor(ctx context.Context, actorID string) (*ledger.Actor, error) {
	mem, err := m.FindByID(ctx, actorID)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger.Actor{ID: mem.ID, Name: mem.Name, Grade: mem.Grade}, nil
}
