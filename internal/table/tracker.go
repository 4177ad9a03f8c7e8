package table

import (
	"context"
	"sync"
)

// Tracker hands out request generations per table so that a slow response
// for an old descriptor can be recognised and dropped. One Tracker serves
// one session.
type Tracker struct {
	mu     sync.Mutex
	tables map[string]*generation
}

type generation struct {
	n      uint64
	cancel context.CancelFunc
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{tables: make(map[string]*generation)}
}

// Ticket identifies one request for a table.
type Ticket struct {
	tracker *Tracker
	table   string
	n       uint64
}

// Begin starts a new request for tableID. The previous request for the same
// table, if still running, has its context cancelled and its ticket made
// stale. Call Done on the returned ticket when the request finishes.
func (t *Tracker) Begin(ctx context.Context, tableID string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	g, ok := t.tables[tableID]
	if !ok {
		g = &generation{}
		t.tables[tableID] = g
	}
	if g.cancel != nil {
		g.cancel()
	}
	g.n++
	g.cancel = cancel
	n := g.n
	t.mu.Unlock()

	return ctx, Ticket{tracker: t, table: tableID, n: n}
}

// Current reports whether no newer request for the same table has begun.
func (k Ticket) Current() bool {
	if k.tracker == nil {
		return true
	}
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	g, ok := k.tracker.tables[k.table]
	return ok && g.n == k.n
}

// Done releases the request's context. Stale tickets leave the newer
// request untouched.
func (k Ticket) Done() {
	if k.tracker == nil {
		return
	}
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	g, ok := k.tracker.tables[k.table]
	if !ok || g.n != k.n {
		return
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Forget drops all generations, cancelling anything still running. Used
// when the owning session ends.
func (t *Tracker) Forget() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, g := range t.tables {
		if g.cancel != nil {
			g.cancel()
		}
		delete(t.tables, id)
	}
}
