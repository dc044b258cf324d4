package selection

import (
	"context"
	"slices"
	"testing"

	"wattle/downloader/internal/ledger"
)

func TestResolve_All(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()

	for _, maxIndex := range []int{0, 1, 5} {
		for _, expr := range []string{"all", "ALL", "All"} {
			got, err := Resolve(ctx, expr, maxIndex, "Lecture", l)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(got) != maxIndex {
				t.Fatalf("Resolve(%q, %d) returned %d indices, expected %d", expr, maxIndex, len(got), maxIndex)
			}
			for i, index := range got {
				if index != i {
					t.Errorf("Resolve(%q, %d)[%d] = %d, expected %d", expr, maxIndex, i, index, i)
				}
			}
		}
	}
}

func TestResolve_NumbersAndRanges(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		maxIndex int
		expected []int
	}{
		{"single", "2", 5, []int{1}},
		{"deduplicated", "1,1,2-3,3", 5, []int{0, 1, 2}},
		{"unsorted input", "5,1-2", 5, []int{0, 1, 4}},
		{"spaces", " 1 , 3 - 4 ", 5, []int{0, 2, 3}},
		{"reversed range", "5-2", 10, []int{}},
		{"range clipped", "4-9", 5, []int{3, 4}},
		{"zero dropped", "0,1", 5, []int{0}},
		{"out of range only", "6,7-9,100", 5, []int{}},
		{"malformed", "x,1a,-,2-y,,3", 5, []int{2}},
		{"too many dashes", "1-2-3", 5, []int{}},
		{"negative", "-3", 5, []int{}},
		{"empty", "", 5, []int{}},
		{"no candidates", "1-3", 0, []int{}},
	}

	ctx := context.Background()
	l := ledger.NewMemoryLedger()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Resolve(ctx, test.expr, test.maxIndex, "Lecture", l)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !slices.Equal(got, test.expected) {
				t.Errorf("Resolve(%q, %d) = %v, expected %v", test.expr, test.maxIndex, got, test.expected)
			}
		})
	}
}

func TestResolve_Failed(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()

	l.RecordFailure(ctx, ledger.Key{Ordinal: 3, Filter: "Lecture"})
	l.RecordSuccess(ctx, ledger.Key{Ordinal: 1, Filter: "Lecture"})
	l.RecordFailure(ctx, ledger.Key{Ordinal: 2, Filter: "Lecture"})
	l.RecordFailure(ctx, ledger.Key{Ordinal: 2, Filter: "Lecture"})
	l.RecordFailure(ctx, ledger.Key{Ordinal: 1, Filter: "Tutorial"})

	got, err := Resolve(ctx, "FAILED", 5, "Lecture", l)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Ledger order, not sorted.
	expected := []int{2, 1}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	got, err = Resolve(ctx, "failed", 2, "Lecture", l)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !slices.Equal(got, []int{1}) {
		t.Errorf("Expected ordinals beyond the candidate count to be dropped, got %v", got)
	}

	got, _ = Resolve(ctx, "failed", 5, "Assignment", l)
	if len(got) != 0 {
		t.Errorf("Expected no failed items for an unused filter, got %v", got)
	}
}

func TestResolve_FailedDoesNotSortOrDeduplicate(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()

	for _, ordinal := range []int{4, 1, 4} {
		l.RecordFailure(ctx, ledger.Key{Ordinal: ordinal, Filter: "pdf"})
	}

	got, err := Resolve(ctx, "failed", 5, "pdf", l)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// Keys are unique per (ordinal, filter), so the repeated failure of item 4
	// yields a single entry at its first-seen position.
	if !slices.Equal(got, []int{3, 0}) {
		t.Errorf("Expected [3 0], got %v", got)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()
	l.RecordFailure(ctx, ledger.Key{Ordinal: 2, Filter: "Lecture"})

	for _, expr := range []string{"all", "failed", "1-3,2,7"} {
		first, _ := Resolve(ctx, expr, 4, "Lecture", l)
		second, _ := Resolve(ctx, expr, 4, "Lecture", l)
		if !slices.Equal(first, second) {
			t.Errorf("Resolve(%q) not idempotent: %v then %v", expr, first, second)
		}
	}
}
