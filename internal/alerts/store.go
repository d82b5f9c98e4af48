package alerts

import (
	"sync"
	"time"

	"logguard/internal/model"
)

// Entry is an alert plus the time it entered the store. Alerts themselves
// carry no timestamp; the store records arrival so the API can filter.
type Entry struct {
	At    time.Time   `json:"at"`
	Alert model.Alert `json:"alert"`
}

// Store keeps the most recent alerts in a bounded ring.
type Store struct {
	mu    sync.RWMutex
	buf   []Entry
	limit int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1000
	}
	return &Store{limit: limit}
}

func (s *Store) Add(alert model.Alert) {
	entry := Entry{At: time.Now().UTC(), Alert: alert}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) < s.limit {
		s.buf = append(s.buf, entry)
		return
	}
	copy(s.buf, s.buf[1:])
	s.buf[len(s.buf)-1] = entry
}

func (s *Store) AddAll(alerts []model.Alert) {
	for _, a := range alerts {
		s.Add(a)
	}
}

func (s *Store) List(limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]Entry, 0, limit)
	for i := len(s.buf) - limit; i < len(s.buf); i++ {
		out = append(out, s.buf[i])
	}
	return out
}

func (s *Store) Since(ts time.Time) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0)
	for _, e := range s.buf {
		if !e.At.Before(ts) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buf)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}
