package expiry

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/erazemk/lekarna/internal/store"
)

// Drawer holds the last computed upcoming events for one owner, the way a
// notification drawer shows them. Deletes edit the snapshot in place instead
// of recomputing it.
type Drawer struct {
	agg   *Aggregator
	owner string

	mu         sync.Mutex
	events     []Event
	computedAt time.Time
	started    uint64 // refreshes begun
	applied    uint64 // sequence number of the refresh the snapshot came from
}

// NewDrawer returns an empty drawer for owner.
func NewDrawer(agg *Aggregator, ownerID string) *Drawer {
	return &Drawer{agg: agg, owner: ownerID}
}

// Refresh recomputes the snapshot as of ref. On failure the previous
// snapshot is kept and returned with the error. A refresh that finishes after
// a later one has already been applied is discarded.
func (d *Drawer) Refresh(ctx context.Context, ref time.Time) ([]Event, error) {
	d.mu.Lock()
	d.started++
	seq := d.started
	d.mu.Unlock()

	events, err := d.agg.Upcoming(ctx, d.owner, ref)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil && seq > d.applied {
		d.events = events
		d.computedAt = ref
		d.applied = seq
	}
	return slices.Clone(d.events), err
}

// Items returns a copy of the current snapshot.
func (d *Drawer) Items() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.events)
}

// ComputedAt is the reference instant of the current snapshot, zero if none.
func (d *Drawer) ComputedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.computedAt
}

// Delete deletes the item behind the event with itemID. When the store
// reports success or that the item is already gone, the event leaves the
// snapshot. Any other failure leaves the snapshot unchanged.
func (d *Drawer) Delete(ctx context.Context, itemID string) error {
	d.mu.Lock()
	i := slices.IndexFunc(d.events, func(ev Event) bool { return ev.ItemID == itemID })
	var ev Event
	if i >= 0 {
		ev = d.events[i]
	}
	d.mu.Unlock()

	if i < 0 {
		return ErrNotInDrawer
	}

	err := d.agg.DeleteEvent(ctx, d.owner, ev)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	d.mu.Lock()
	d.events = slices.DeleteFunc(d.events, func(e Event) bool { return e.ItemID == itemID })
	d.mu.Unlock()
	return nil
}
