package remind

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend is an in-process Backend. It stands in for an OS notification
// center in the server and in tests; pending entries are keyed by occurrence
// ID, so resubmitting the same logical occurrence replaces it.
type MemoryBackend struct {
	mu        sync.Mutex
	pending   map[string]ScheduleRequest
	delivered []DeliveredNotification
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{pending: map[string]ScheduleRequest{}}
}

func (m *MemoryBackend) ClearAllPending(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = map[string]ScheduleRequest{}
	return nil
}

func (m *MemoryBackend) Submit(_ context.Context, req ScheduleRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[req.ID] = req
	return nil
}

func (m *MemoryBackend) ListPending(_ context.Context) ([]ScheduleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScheduleRequest, 0, len(m.pending))
	for _, req := range m.pending {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryBackend) ListDelivered(_ context.Context) ([]DeliveredNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DeliveredNotification(nil), m.delivered...), nil
}

func (m *MemoryBackend) RemoveDelivered(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := m.delivered[:0]
	for _, d := range m.delivered {
		if !remove[d.ID] {
			kept = append(kept, d)
		}
	}
	m.delivered = kept
	return nil
}

// MarkDelivered simulates the backend firing a pending occurrence. Used by
// the admin flow and tests.
func (m *MemoryBackend) MarkDelivered(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.pending[id]
	if !ok {
		return
	}
	delete(m.pending, id)
	m.delivered = append(m.delivered, DeliveredNotification{
		ID:           req.ID,
		ReminderUUID: req.ReminderUUID,
		DeliveredAt:  at,
	})
}

var _ Backend = (*MemoryBackend)(nil)
