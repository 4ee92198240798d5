package list

import (
	"sync"

	"github.com/marksync/marks/internal/domain"
)

// List is the local list state: the authoritative in-memory ordered
// collection of bookmark records currently displayed. It is ordered by
// CreatedAt descending (most recent first); records sharing a timestamp
// keep insertion order, with the later insertion in front.
//
// Mutations happen only on the engine's event loop, but snapshots may be
// read from any goroutine, so access is guarded by an RWMutex.
type List struct {
	mu      sync.RWMutex
	entries []*domain.Bookmark
	byID    map[string]struct{}
}

// New creates an empty list.
func New() *List {
	return &List{
		byID: make(map[string]struct{}),
	}
}

// Reset replaces the whole list with a snapshot fetched from the durable
// store. Used once when the engine seeds its state.
func (l *List) Reset(records []*domain.Bookmark) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = l.entries[:0]
	l.byID = make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := l.byID[rec.ID]; dup {
			continue
		}
		l.entries = l.insertSorted(l.entries, rec)
		l.byID[rec.ID] = struct{}{}
	}
}

// InsertAtFront adds a record at its CreatedAt-descending position,
// which is the front whenever the record is the newest. Inserting an id
// that is already present is a no-op: uniqueness holds unconditionally,
// regardless of which path (submitter or listener) races to insert.
func (l *List) InsertAtFront(rec *domain.Bookmark) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[rec.ID]; exists {
		return
	}
	l.entries = l.insertSorted(l.entries, rec)
	l.byID[rec.ID] = struct{}{}
}

// RemoveByID removes the record with the given id. Removing an absent id
// is a no-op; the submitter's optimistic delete and the listener's
// Deleted event may race to remove the same record.
func (l *List) RemoveByID(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.removeLocked(id)
}

// ReplaceByID swaps the record with the given id for its replacement,
// keeping the slot so the row does not jump while a placeholder is
// confirmed. Replacing an absent id is a no-op. If the replacement's id
// is already present elsewhere (the remote echo landed before the create
// response), the stale entry is dropped instead of duplicated.
func (l *List) ReplaceByID(id string, rec *domain.Bookmark) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[id]; !exists {
		return
	}
	if _, exists := l.byID[rec.ID]; exists && rec.ID != id {
		l.removeLocked(id)
		return
	}

	for i, e := range l.entries {
		if e.ID == id {
			l.entries[i] = rec
			delete(l.byID, id)
			l.byID[rec.ID] = struct{}{}
			return
		}
	}
}

// Has reports whether a record with the given id is present.
func (l *List) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.byID[id]
	return ok
}

// Get returns the record with the given id, if present.
func (l *List) Get(id string) (*domain.Bookmark, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.byID[id]; !ok {
		return nil, false
	}
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of records.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// Snapshot returns a read-only copy of the list in display order. The
// returned records are value copies; callers cannot mutate list state
// through them.
func (l *List) Snapshot() []domain.Bookmark {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Bookmark, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}

func (l *List) removeLocked(id string) {
	if _, exists := l.byID[id]; !exists {
		return
	}
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	delete(l.byID, id)
}

// insertSorted places rec before the first entry that is not strictly
// newer, so equal timestamps end up with the later insertion in front.
func (l *List) insertSorted(entries []*domain.Bookmark, rec *domain.Bookmark) []*domain.Bookmark {
	i := 0
	for i < len(entries) && entries[i].CreatedAt.After(rec.CreatedAt) {
		i++
	}
	entries = append(entries, nil)
	copy(entries[i+1:], entries[i:])
	entries[i] = rec
	return entries
}
