// Package ledger tracks per-item download failures for the lifetime of a session.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Key identifies an item by its 1-based ordinal within the candidate sequence
// produced for Filter. Ordinals are only meaningful for that filter and that
// page state.
type Key struct {
	Ordinal int
	Filter  string
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%s", k.Ordinal, k.Filter)
}

// ParseKey is the inverse of Key.String
func ParseKey(s string) (Key, error) {
	ordinal, filter, ok := strings.Cut(s, "-")
	if !ok {
		return Key{}, fmt.Errorf("malformed ledger key %q", s)
	}
	n, err := strconv.Atoi(ordinal)
	if err != nil {
		return Key{}, fmt.Errorf("malformed ledger key %q: %w", s, err)
	}
	return Key{Ordinal: n, Filter: filter}, nil
}

// Ledger maps keys to failure counters. A counter of 0 means the item was
// attempted without a recorded failure; a missing entry means it was never
// attempted.
type Ledger interface {
	RecordSuccess(ctx context.Context, key Key) error
	RecordFailure(ctx context.Context, key Key) error
	// FailedKeys returns keys for filter with a positive counter, in the order
	// the keys were first recorded.
	FailedKeys(ctx context.Context, filter string) ([]Key, error)
	Count(ctx context.Context, key Key) (count int, ok bool, err error)
	Close() error
}
