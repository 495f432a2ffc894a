package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// stockKey identifies one stock record.
type stockKey struct {
	ItemID       int64
	DepartmentID int64
}

// lockTable hands out per-stock-record critical sections. Multi-key
// acquisition always takes locks in ascending (item, department) order so
// that operations spanning several records cannot deadlock each other.
type lockTable struct {
	mu    sync.Mutex
	locks map[stockKey]chan struct{}
	wait  time.Duration
}

func newLockTable(wait time.Duration) *lockTable {
	return &lockTable{
		locks: make(map[stockKey]chan struct{}),
		wait:  wait,
	}
}

func (t *lockTable) sem(key stockKey) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[key] = ch
	}
	return ch
}

// acquire takes the critical sections for all keys, deduplicated and in
// ascending order. Each acquisition waits at most the configured bound;
// on timeout or context cancellation every lock taken so far is released
// and ErrTimeout (or the context error) is returned. The caller must invoke
// the returned release function exactly once.
func (t *lockTable) acquire(ctx context.Context, keys ...stockKey) (func(), error) {
	ordered := dedupeKeys(keys)

	timer := time.NewTimer(t.wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ordered))
	release := func() {
		// Unlock in reverse order of acquisition.
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range ordered {
		ch := t.sem(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-timer.C:
			release()
			return nil, ErrTimeout
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}

// dedupeKeys sorts keys ascending by (item, department) and drops duplicates.
func dedupeKeys(keys []stockKey) []stockKey {
	ordered := make([]stockKey, len(keys))
	copy(ordered, keys)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].ItemID != ordered[j].ItemID {
			return ordered[i].ItemID < ordered[j].ItemID
		}
		return ordered[i].DepartmentID < ordered[j].DepartmentID
	})

	out := make([]stockKey, 0, len(ordered))
	for _, k := range ordered {
		if len(out) == 0 || out[len(out)-1] != k {
			out = append(out, k)
		}
	}
	return out
}
