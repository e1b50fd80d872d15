package expiry

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches any failure to read the items an aggregation needs.
	ErrFetch = errors.New("fetching items failed")
	// ErrDelete matches a failed delete other than the item already being gone.
	ErrDelete = errors.New("deleting item failed")
	// ErrNoOwner is returned when the owner ID is empty.
	ErrNoOwner = errors.New("owner id is required")
	// ErrUnknownKind is returned for event kinds other than medication and vitamin.
	ErrUnknownKind = errors.New("unknown item kind")
	// ErrNotInDrawer is returned when deleting an event the drawer does not hold.
	ErrNotInDrawer = errors.New("event not in drawer")
)

// FetchError reports which collection could not be read.
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s items: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// DeleteError reports a failed delete of one item.
type DeleteError struct {
	Kind   Kind
	ItemID string
	Err    error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting %s %s: %v", e.Kind, e.ItemID, e.Err)
}

func (e *DeleteError) Unwrap() []error {
	return []error{ErrDelete, e.Err}
}
