package ledger

import "context"

// memoryLedger is owned by a single sequential caller and does no locking.
type memoryLedger struct {
	order  []Key
	counts map[Key]int
}

// NewMemoryLedger creates an empty in-process ledger
func NewMemoryLedger() Ledger {
	return &memoryLedger{
		counts: make(map[Key]int),
	}
}

func (l *memoryLedger) touch(key Key) {
	if _, exists := l.counts[key]; !exists {
		l.order = append(l.order, key)
		l.counts[key] = 0
	}
}

func (l *memoryLedger) RecordSuccess(_ context.Context, key Key) error {
	l.touch(key)
	l.counts[key] = 0
	return nil
}

func (l *memoryLedger) RecordFailure(_ context.Context, key Key) error {
	l.touch(key)
	l.counts[key]++
	return nil
}

func (l *memoryLedger) FailedKeys(_ context.Context, filter string) ([]Key, error) {
	var keys []Key
	for _, key := range l.order {
		if key.Filter == filter && l.counts[key] > 0 {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (l *memoryLedger) Count(_ context.Context, key Key) (int, bool, error) {
	count, ok := l.counts[key]
	return count, ok, nil
}

func (l *memoryLedger) Close() error {
	return nil
}
