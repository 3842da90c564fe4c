// Package audit keeps the append-only action log written by mutating
// handlers and read by administrators.
package audit

import (
	"context"
	"sync"
	"time"
)

type Entry struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	ActorID   string    `db:"actor_id" json:"actorId"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
	// List returns at most limit entries, newest first.
	List(ctx context.Context, limit int) ([]Entry, error)
	// Prune deletes entries created before the cutoff and reports how many.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

const DefaultListLimit = 200

// Memory is a bounded in-process Recorder. The oldest entries are dropped
// once capacity is reached.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
	seq     int64
	now     func() time.Time
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Memory{cap: capacity, now: time.Now}
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e.ID = m.seq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now().UTC()
	}
	m.entries = append(m.entries, e)
	if len(m.entries) > m.cap {
		m.entries = m.entries[len(m.entries)-m.cap:]
	}
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *Memory) Prune(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	var n int64
	for _, e := range m.entries {
		if e.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}
