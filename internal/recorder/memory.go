package recorder

import (
	"sync"
	"time"
)

const (
	// claimRetention bounds how long in-memory claims are remembered.
	claimRetention = 48 * time.Hour
	// historyLimit caps the dispatch and refresh logs; older entries are dropped.
	historyLimit = 1000
)

// MemoryRecorder keeps claims in process memory. Used when SQLite is not
// configured; claims do not survive a restart.
type MemoryRecorder struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time

	Dispatches []DispatchEvent
	Refreshes  []RefreshEvent
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{claims: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRecorder) ClaimDispatch(subscriberID, slot string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, at := range m.claims {
		if now.Sub(at) > claimRetention {
			delete(m.claims, k)
		}
	}
	key := subscriberID + "|" + slot
	if _, taken := m.claims[key]; taken {
		return false, nil
	}
	m.claims[key] = now
	return true, nil
}

func (m *MemoryRecorder) RecordDispatch(evt *DispatchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dispatches = appendCapped(m.Dispatches, *evt)
	return nil
}

func (m *MemoryRecorder) RecordRefresh(evt *RefreshEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Refreshes = appendCapped(m.Refreshes, *evt)
	return nil
}

// DispatchCount returns how many dispatch records have been written.
func (m *MemoryRecorder) DispatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Dispatches)
}

func (m *MemoryRecorder) Close() error { return nil }

func appendCapped[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyLimit {
		s = append(s[:0], s[len(s)-historyLimit:]...)
	}
	return s
}
