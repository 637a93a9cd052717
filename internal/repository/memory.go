package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStateStore is the single-process StateStore used when Redis is absent
// or down.
type MemoryStateStore struct {
	mu         sync.Mutex
	windows    map[string]*quotaWindow
	audit      [][]byte
	auditLimit int
	now        func() time.Time
}

type quotaWindow struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStateStore(auditLimit int) *MemoryStateStore {
	return &MemoryStateStore{
		windows:    make(map[string]*quotaWindow),
		auditLimit: auditLimit,
		now:        time.Now,
	}
}

func (r *MemoryStateStore) Allow(ctx context.Context, client string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.windows[client]
	if !ok || now.After(entry.expiresAt) {
		entry = &quotaWindow{expiresAt: now.Add(window)}
		r.windows[client] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}

func (r *MemoryStateStore) Append(ctx context.Context, entry []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := append([]byte(nil), entry...)
	r.audit = append([][]byte{cp}, r.audit...)
	if r.auditLimit > 0 && len(r.audit) > r.auditLimit {
		r.audit = r.audit[:r.auditLimit]
	}
	return nil
}

func (r *MemoryStateStore) Recent(ctx context.Context, n int64) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 {
		return nil, nil
	}
	if n > int64(len(r.audit)) {
		n = int64(len(r.audit))
	}
	out := make([][]byte, n)
	copy(out, r.audit[:n])
	return out, nil
}
