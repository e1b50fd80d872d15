package expiry

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// Store is the part of the record store the aggregator reads and deletes from.
type Store interface {
	ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error)
	ListVitamins(ctx context.Context, ownerID string) ([]model.Vitamin, error)
	DeleteMedication(ctx context.Context, ownerID, id string) error
	DeleteVitamin(ctx context.Context, ownerID, id string) error
}

// Observer is told the outcome of each aggregator operation.
type Observer interface {
	ObserveExpiry(operation string, err error)
}

// Operation names passed to Observer.
const (
	OpUpcoming = "upcoming"
	OpCalendar = "calendar"
	OpDelete   = "delete"
)

// Aggregator computes expiration events for one owner at a time.
type Aggregator struct {
	store    Store
	loc      *time.Location
	observer Observer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithObserver reports every operation's outcome to o.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

// New returns an Aggregator reading from s. Calendar days are taken in loc.
func New(s Store, loc *time.Location, opts ...Option) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	a := &Aggregator{store: s, loc: loc}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location is the time zone calendar days are taken in.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Today is the calendar day ref falls on.
func (a *Aggregator) Today(ref time.Time) civil.Date {
	return model.DayOf(ref, a.loc)
}

func (a *Aggregator) observe(op string, err error) {
	if a.observer != nil {
		a.observer.ObserveExpiry(op, err)
	}
}

// collect reads both collections concurrently. Either failure fails the whole read.
func (a *Aggregator) collect(ctx context.Context, ownerID string) ([]model.Medication, []model.Vitamin, error) {
	if ownerID == "" {
		return nil, nil, ErrNoOwner
	}

	var (
		meds []model.Medication
		vits []model.Vitamin
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if meds, err = a.store.ListMedications(gctx, ownerID); err != nil {
			return &FetchError{Kind: KindMedication, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if vits, err = a.store.ListVitamins(gctx, ownerID); err != nil {
			return &FetchError{Kind: KindVitamin, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return meds, vits, nil
}

// events maps every dated item to an event, vitamins first.
func events(meds []model.Medication, vits []model.Vitamin) []Event {
	out := make([]Event, 0, len(meds)+len(vits))
	for _, v := range vits {
		if ev, ok := fromVitamin(v); ok {
			out = append(out, ev)
		}
	}
	for _, m := range meds {
		if ev, ok := fromMedication(m); ok {
			out = append(out, ev)
		}
	}
	return out
}

// Upcoming returns the owner's items expiring on the calendar day of ref or
// the day after. Time of day plays no part.
func (a *Aggregator) Upcoming(ctx context.Context, ownerID string, ref time.Time) ([]Event, error) {
	meds, vits, err := a.collect(ctx, ownerID)
	if err != nil {
		a.observe(OpUpcoming, err)
		return nil, err
	}

	today := a.Today(ref)
	var upcoming []Event
	for _, ev := range events(meds, vits) {
		urgency, ok := urgencyFor(ev.ExpiresOn, today)
		if !ok {
			continue
		}
		ev.Urgency = urgency
		upcoming = append(upcoming, ev)
	}

	a.observe(OpUpcoming, nil)
	return upcoming, nil
}

// Calendar groups every dated item by the day it expires.
type Calendar map[civil.Date][]Event

// Calendar returns all of the owner's dated items grouped by day.
func (a *Aggregator) Calendar(ctx context.Context, ownerID string) (Calendar, error) {
	meds, vits, err := a.collect(ctx, ownerID)
	if err != nil {
		a.observe(OpCalendar, err)
		return nil, err
	}

	cal := Calendar{}
	for _, ev := range events(meds, vits) {
		cal[ev.ExpiresOn] = append(cal[ev.ExpiresOn], ev)
	}

	a.observe(OpCalendar, nil)
	return cal, nil
}

// On returns the events expiring on d.
func (c Calendar) On(d civil.Date) []Event {
	return c[d]
}

// Markers returns one marker per kind expiring on d.
func (c Calendar) Markers(d civil.Date) []Marker {
	var markers []Marker
	for _, kind := range []Kind{KindVitamin, KindMedication} {
		if slices.ContainsFunc(c[d], func(ev Event) bool { return ev.Kind == kind }) {
			markers = append(markers, Marker{Kind: kind, Color: kind.Color()})
		}
	}
	return markers
}

// Dates returns the marked days in ascending order.
func (c Calendar) Dates() []civil.Date {
	dates := make([]civil.Date, 0, len(c))
	for d := range c {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b civil.Date) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})
	return dates
}

// DeleteEvent deletes the item behind ev. store.ErrNotFound is returned as is
// so callers can treat an already deleted item as success. Nothing is retried.
func (a *Aggregator) DeleteEvent(ctx context.Context, ownerID string, ev Event) error {
	err := a.deleteEvent(ctx, ownerID, ev)
	a.observe(OpDelete, err)
	return err
}

func (a *Aggregator) deleteEvent(ctx context.Context, ownerID string, ev Event) error {
	if ownerID == "" {
		return ErrNoOwner
	}

	var err error
	switch ev.Kind {
	case KindMedication:
		err = a.store.DeleteMedication(ctx, ownerID, ev.ItemID)
	case KindVitamin:
		err = a.store.DeleteVitamin(ctx, ownerID, ev.ItemID)
	default:
		return ErrUnknownKind
	}

	switch {
	case err == nil:
		slog.Info("expiring item deleted", "owner", ownerID, "kind", ev.Kind, "item", ev.ItemID)
		return nil
	case errors.Is(err, store.ErrNotFound):
		return err
	default:
		return &DeleteError{Kind: ev.Kind, ItemID: ev.ItemID, Err: err}
	}
}
