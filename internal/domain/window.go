package domain

import "sync"

// RecencyWindow is the bounded, ordered set of recently accepted articles
// that dedup compares candidates against. Oldest entries are evicted first.
// Only the cycle orchestrator appends, during Publishing; everything else
// reads.
type RecencyWindow struct {
	mu      sync.RWMutex
	size    int
	entries []Article
}

// NewRecencyWindow builds a window holding at most size accepted articles.
func NewRecencyWindow(size int) *RecencyWindow {
	if size <= 0 {
		size = 15
	}
	return &RecencyWindow{size: size}
}

// Append records an accepted article, evicting the oldest entry when the
// window is full. Insertion order matches acceptance order.
func (w *RecencyWindow) Append(article Article) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = append(w.entries, article)
	if len(w.entries) > w.size {
		w.entries = w.entries[len(w.entries)-w.size:]
	}
}

// ContainsHash reports whether an exact repeat of the candidate is already
// in the window.
func (w *RecencyWindow) ContainsHash(hash string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, entry := range w.entries {
		if entry.Hash == hash {
			return true
		}
	}
	return false
}

// Titles returns the window's titles most recent first, for the dedup
// comparison prompt.
func (w *RecencyWindow) Titles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	titles := make([]string, 0, len(w.entries))
	for i := len(w.entries) - 1; i >= 0; i-- {
		titles = append(titles, w.entries[i].Title)
	}
	return titles
}

// Len returns the current number of entries.
func (w *RecencyWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}
