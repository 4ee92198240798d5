package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/engine"
	"github.com/marksync/marks/internal/logger"
)

// memoryBackend is an in-process stand-in for the store and its change
// feed: every committed write is fanned out to all live subscriptions,
// the way the redis pubsub channel does it.
type memoryBackend struct {
	mu      sync.Mutex
	records map[string]*domain.Bookmark
	subs    map[int]*memorySub
	nextSub int
	now     time.Time
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		records: make(map[string]*domain.Bookmark),
		subs:    make(map[int]*memorySub),
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryBackend) Create(_ context.Context, owner, url, title string) (*domain.Bookmark, error) {
	m.mu.Lock()
	m.now = m.now.Add(time.Second)
	rec := &domain.Bookmark{
		ID: uuid.NewString(), Owner: owner, URL: url, Title: title, CreatedAt: m.now,
	}
	m.records[rec.ID] = rec
	subs := m.ownerSubs(owner)
	m.mu.Unlock()

	for _, s := range subs {
		s.deliver(domain.Created(rec))
	}
	return rec, nil
}

func (m *memoryBackend) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok || rec.Owner != owner {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(m.records, id)
	subs := m.ownerSubs(owner)
	m.mu.Unlock()

	for _, s := range subs {
		s.deliver(domain.Deleted(id))
	}
	return nil
}

func (m *memoryBackend) ListAll(_ context.Context, owner string) ([]*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Bookmark
	for _, rec := range m.records {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryBackend) Subscribe(_ context.Context, owner string, onEvent func(domain.Change), onError func(error)) (engine.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	sub := &memorySub{backend: m, id: id, owner: owner, onEvent: onEvent}
	m.subs[id] = sub
	return sub, nil
}

// ownerSubs must be called with m.mu held.
func (m *memoryBackend) ownerSubs(owner string) []*memorySub {
	var out []*memorySub
	for _, s := range m.subs {
		if s.owner == owner {
			out = append(out, s)
		}
	}
	return out
}

type memorySub struct {
	backend *memoryBackend
	id      int
	owner   string
	onEvent func(domain.Change)
}

func (s *memorySub) deliver(c domain.Change) { s.onEvent(c) }

func (s *memorySub) Unsubscribe() error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.subs, s.id)
	return nil
}

func startEngine(t *testing.T, backend *memoryBackend, owner string) *engine.Engine {
	t.Helper()
	eng := engine.New(owner, backend, backend, logger.NewNop())
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(eng.Stop)
	return eng
}

// waitConverged polls until cond holds or the deadline passes.
func waitConverged(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sessions did not converge in time")
}

func ids(snapshot []domain.Bookmark) []string {
	out := make([]string, len(snapshot))
	for i, b := range snapshot {
		out[i] = b.ID
	}
	return out
}

func settled(eng *engine.Engine, want int) bool {
	snap := eng.Snapshot()
	if len(snap) != want {
		return false
	}
	for _, b := range snap {
		if b.IsPlaceholder() {
			return false
		}
	}
	return true
}

func TestTwoSessionsConverge(t *testing.T) {
	backend := newMemoryBackend()
	alice1 := startEngine(t, backend, "alice")
	alice2 := startEngine(t, backend, "alice")

	alice1.Create("https://go.dev", "Go")
	alice2.Create("https://pkg.go.dev", "Packages")

	waitConverged(t, func() bool { return settled(alice1, 2) && settled(alice2, 2) })

	got1, got2 := ids(alice1.Snapshot()), ids(alice2.Snapshot())
	if fmt.Sprint(got1) != fmt.Sprint(got2) {
		t.Errorf("sessions disagree: %v vs %v", got1, got2)
	}

	// Newest first in both sessions.
	snap := alice1.Snapshot()
	if !snap[0].CreatedAt.After(snap[1].CreatedAt) {
		t.Errorf("expected newest-first order, got %v then %v", snap[0].CreatedAt, snap[1].CreatedAt)
	}
}

func TestDeletePropagatesAcrossSessions(t *testing.T) {
	backend := newMemoryBackend()
	alice1 := startEngine(t, backend, "alice")
	alice2 := startEngine(t, backend, "alice")

	alice1.Create("https://go.dev", "Go")
	waitConverged(t, func() bool { return settled(alice1, 1) && settled(alice2, 1) })

	target := alice2.Snapshot()[0].ID
	alice2.Delete(target)

	waitConverged(t, func() bool {
		return len(alice1.Snapshot()) == 0 && len(alice2.Snapshot()) == 0
	})
}

func TestOwnersAreIsolated(t *testing.T) {
	backend := newMemoryBackend()
	alice := startEngine(t, backend, "alice")
	bob := startEngine(t, backend, "bob")

	alice.Create("https://go.dev", "Go")
	waitConverged(t, func() bool { return settled(alice, 1) })

	// Give any stray fan-out a moment to land before asserting.
	time.Sleep(50 * time.Millisecond)
	if n := len(bob.Snapshot()); n != 0 {
		t.Errorf("bob sees %d of alice's bookmarks", n)
	}
}

func TestDeleteUnderForeignOwnerIsRejected(t *testing.T) {
	backend := newMemoryBackend()
	alice := startEngine(t, backend, "alice")

	alice.Create("https://go.dev", "Go")
	waitConverged(t, func() bool { return settled(alice, 1) })
	target := alice.Snapshot()[0].ID

	if err := backend.Delete(context.Background(), "bob", target); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrNotFound", err)
	}

	time.Sleep(50 * time.Millisecond)
	if len(alice.Snapshot()) != 1 {
		t.Error("foreign delete removed alice's bookmark")
	}
}

func TestLateJoinerSeedsFromStore(t *testing.T) {
	backend := newMemoryBackend()
	alice1 := startEngine(t, backend, "alice")

	alice1.Create("https://go.dev", "Go")
	alice1.Create("https://pkg.go.dev", "Packages")
	waitConverged(t, func() bool { return settled(alice1, 2) })

	alice2 := startEngine(t, backend, "alice")
	waitConverged(t, func() bool { return settled(alice2, 2) })

	got1, got2 := ids(alice1.Snapshot()), ids(alice2.Snapshot())
	if fmt.Sprint(got1) != fmt.Sprint(got2) {
		t.Errorf("late joiner disagrees: %v vs %v", got1, got2)
	}
}

func TestRapidMixedTrafficConverges(t *testing.T) {
	backend := newMemoryBackend()
	alice1 := startEngine(t, backend, "alice")
	alice2 := startEngine(t, backend, "alice")

	for i := 0; i < 10; i++ {
		alice1.Create(fmt.Sprintf("https://one.example/%d", i), fmt.Sprintf("One %d", i))
		alice2.Create(fmt.Sprintf("https://two.example/%d", i), fmt.Sprintf("Two %d", i))
	}
	waitConverged(t, func() bool { return settled(alice1, 20) && settled(alice2, 20) })

	// Delete half from each side.
	snap := alice1.Snapshot()
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			alice1.Delete(snap[i].ID)
		} else {
			alice2.Delete(snap[i].ID)
		}
	}
	waitConverged(t, func() bool { return settled(alice1, 10) && settled(alice2, 10) })

	got1, got2 := ids(alice1.Snapshot()), ids(alice2.Snapshot())
	if fmt.Sprint(got1) != fmt.Sprint(got2) {
		t.Errorf("sessions disagree after mixed traffic: %v vs %v", got1, got2)
	}
}
