// Package selection turns a selection expression into zero-based item indices.
//
// An expression is "all", "failed" (both case-insensitive) or a comma separated
// list of 1-based numbers and inclusive ranges such as "1-3,5,7-9".
package selection

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"wattle/downloader/internal/ledger"
)

const (
	All    = "all"
	Failed = "failed"
)

// Resolve returns the indices in [0, maxIndex) picked by expr. Malformed and
// out-of-range tokens are dropped, never reported. The only error source is
// the ledger backend when expr is "failed".
func Resolve(ctx context.Context, expr string, maxIndex int, filter string, l ledger.Ledger) ([]int, error) {
	switch {
	case strings.EqualFold(expr, All):
		indices := make([]int, 0, max(maxIndex, 0))
		for i := 0; i < maxIndex; i++ {
			indices = append(indices, i)
		}
		return indices, nil

	case strings.EqualFold(expr, Failed):
		return failedIndices(ctx, maxIndex, filter, l)
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(expr, ",") {
		if strings.Contains(part, "-") {
			addRange(seen, part, maxIndex)
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			addIndex(seen, n-1, maxIndex)
		}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices, nil
}

// failedIndices keeps ledger order and does not deduplicate. Ordinals that no
// longer fit the current candidate count are dropped.
func failedIndices(ctx context.Context, maxIndex int, filter string, l ledger.Ledger) ([]int, error) {
	keys, err := l.FailedKeys(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read failed items for %q: %w", filter, err)
	}

	indices := make([]int, 0, len(keys))
	for _, key := range keys {
		index := key.Ordinal - 1
		if index >= 0 && index < maxIndex {
			indices = append(indices, index)
		}
	}
	return indices, nil
}

func addRange(seen map[int]struct{}, part string, maxIndex int) {
	bounds := strings.Split(part, "-")
	if len(bounds) != 2 {
		return
	}

	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return
	}

	lo := max(start-1, 0)
	hi := min(end-1, maxIndex-1)
	for i := lo; i <= hi; i++ {
		seen[i] = struct{}{}
	}
}

func addIndex(seen map[int]struct{}, index, maxIndex int) {
	if index >= 0 && index < maxIndex {
		seen[index] = struct{}{}
	}
}
