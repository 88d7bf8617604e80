package session

import (
	"sync"

	"github.com/cleoai/cleo/internal/domain"
)

// History is the append-only conversation log for one session. Entries are
// never truncated or reordered for the lifetime of the session.
type History struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds an entry to the end of the log. No validation happens here;
// callers validate before appending.
func (h *History) Append(e domain.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
}

// Last returns the most recently appended entry, if any.
func (h *History) Last() (domain.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Snapshot returns a copy of the full ordered log. The copy does not
// observe appends made after the snapshot was taken.
func (h *History) Snapshot() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries in the log.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
