package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockTableTimeout(t *testing.T) {
	lt := newLockTable(50 * time.Millisecond)
	ctx := context.Background()
	key := stockKey{1, 1}

	release, err := lt.acquire(ctx, key)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	start := time.Now()
	if _, err := lt.acquire(ctx, key); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("timed out too early after %v", elapsed)
	}

	release()
	release2, err := lt.acquire(ctx, key)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestLockTableContextCancellation(t *testing.T) {
	lt := newLockTable(time.Minute)
	key := stockKey{1, 1}

	release, err := lt.acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := lt.acquire(ctx, key); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLockTableTimeoutReleasesPartialHolds(t *testing.T) {
	lt := newLockTable(50 * time.Millisecond)
	ctx := context.Background()
	blocked := stockKey{2, 1}

	release, err := lt.acquire(ctx, blocked)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	// Acquiring {1,1} succeeds, then {2,1} times out; {1,1} must be freed.
	if _, err := lt.acquire(ctx, stockKey{1, 1}, blocked); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	free, err := lt.acquire(ctx, stockKey{1, 1})
	if err != nil {
		t.Fatalf("partially held lock was not released: %v", err)
	}
	free()
}

func TestDedupeKeysOrdersAndDeduplicates(t *testing.T) {
	keys := []stockKey{{3, 2}, {1, 5}, {3, 1}, {1, 5}, {2, 9}}
	got := dedupeKeys(keys)

	want := []stockKey{{1, 5}, {2, 9}, {3, 1}, {3, 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	// Duplicate keys in one acquisition must not self-deadlock.
	lt := newLockTable(time.Second)
	release, err := lt.acquire(context.Background(), stockKey{1, 1}, stockKey{1, 1})
	if err != nil {
		t.Fatalf("acquire with duplicate keys: %v", err)
	}
	release()
}
