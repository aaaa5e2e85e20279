package model

import "sync"

// Snapshot is a buffer state recorded before an edit.
type Snapshot struct {
	Buffer string
	Label  string
}

// History is a bounded ring of snapshots used for undo. When full, the oldest
// snapshot is overwritten.
type History struct {
	mu      sync.RWMutex
	buf     []Snapshot
	cap     int
	start   int
	size    int
	dropped uint64
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{cap: capacity, buf: make([]Snapshot, capacity)}
}

func (h *History) Push(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size < h.cap {
		h.buf[(h.start+h.size)%h.cap] = s
		h.size++
		return
	}
	// overwrite oldest
	h.buf[h.start] = s
	h.start = (h.start + 1) % h.cap
	h.dropped++
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size == 0 {
		return Snapshot{}, false
	}
	idx := (h.start + h.size - 1) % h.cap
	s := h.buf[idx]
	h.buf[idx] = Snapshot{}
	h.size--
	return s, true
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Dropped is the number of snapshots lost to overwrites.
func (h *History) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.buf {
		h.buf[i] = Snapshot{}
	}
	h.size = 0
	h.start = 0
}
