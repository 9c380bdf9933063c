package services

import (
	"sync"

	"github.com/sentiment-gateway/backend/internal/models"
)

// DefaultHistoryCapacity is the number of analyses kept in memory, and also
// the most a store will ever hold
const DefaultHistoryCapacity = 100

// HistoryStore keeps the most recent analysis results, newest first.
// It is a fixed-size ring: once full, each push overwrites the oldest entry.
type HistoryStore struct {
	mu       sync.RWMutex
	items    []models.AnalysisResult
	head     int // index of the newest entry
	size     int
	capacity int
}

// NewHistoryStore clamps capacity to 1..DefaultHistoryCapacity; zero or
// negative selects the default
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 || capacity > DefaultHistoryCapacity {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryStore{
		items:    make([]models.AnalysisResult, capacity),
		capacity: capacity,
	}
}

// Push adds result at the front, evicting the oldest entry when full
func (h *HistoryStore) Push(result models.AnalysisResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.head = (h.head - 1 + h.capacity) % h.capacity
	h.items[h.head] = result
	if h.size < h.capacity {
		h.size++
	}
}

// Slice returns up to limit entries, newest first. A negative limit drops
// that many of the oldest entries, leaving max(size+limit, 0).
func (h *HistoryStore) Slice(limit int) []models.AnalysisResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sliceLocked(limit)
}

// Recent returns Slice(limit) together with the store size, read under one lock
func (h *HistoryStore) Recent(limit int) ([]models.AnalysisResult, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sliceLocked(limit), h.size
}

// All returns every stored entry, newest first
func (h *HistoryStore) All() []models.AnalysisResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sliceLocked(h.size)
}

func (h *HistoryStore) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func (h *HistoryStore) Capacity() int {
	return h.capacity
}

func (h *HistoryStore) sliceLocked(limit int) []models.AnalysisResult {
	n := limit
	if n < 0 {
		n = h.size + n
	}
	if n > h.size {
		n = h.size
	}
	if n < 0 {
		n = 0
	}

	out := make([]models.AnalysisResult, n)
	for i := 0; i < n; i++ {
		out[i] = h.items[(h.head+i)%h.capacity]
	}
	return out
}
