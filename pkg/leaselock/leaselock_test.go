package leaselock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	key string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.key
	return nil
}

// fakeLocks emulates the app_locks table.
type fakeLocks struct {
	mu      sync.Mutex
	holders map[string]string
	expires map[string]time.Time
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{holders: map[string]string{}, expires: map[string]time.Time{}}
}

func (f *fakeLocks) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, token, ttl := args[0].(string), args[1].(string), args[2].(int64)
	now := time.Now()
	switch sql {
	case tryAcquireSQL:
		holder, held := f.holders[key]
		if held && holder != token && f.expires[key].After(now) {
			return fakeRow{err: pgx.ErrNoRows}
		}
	case renewSQL:
		if f.holders[key] != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
	}
	f.holders[key] = token
	f.expires[key] = now.Add(time.Duration(ttl) * time.Millisecond)
	return fakeRow{key: key}
}

func (f *fakeLocks) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, token := args[0].(string), args[1].(string)
	if f.holders[key] == token {
		delete(f.holders, key)
		delete(f.expires, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (f *fakeLocks) steal(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holders[key] = "someone-else"
}

func TestAcquireBusyAndRelease(t *testing.T) {
	locks := newFakeLocks()
	client := New(locks)
	ctx := context.Background()

	lease, err := client.Acquire(ctx, PlayKey("p1"), ImportOptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.Acquire(ctx, PlayKey("p1"), ImportOptions); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if lease.Context.Err() == nil {
		t.Fatal("expected lease context to be cancelled after release")
	}

	again, err := client.Acquire(ctx, PlayKey("p1"), ImportOptions)
	if err != nil {
		t.Fatalf("expected lock to be free after release, got %v", err)
	}
	_ = again.Release(ctx)
}

func TestAcquireEmptyKey(t *testing.T) {
	if _, err := New(newFakeLocks()).Acquire(context.Background(), "", Options{}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestWaitForLock(t *testing.T) {
	locks := newFakeLocks()
	client := New(locks)
	ctx := context.Background()

	first, err := client.Acquire(ctx, "k", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = first.Release(ctx)
	}()

	second, err := client.Acquire(ctx, "k", Options{Wait: true, WaitInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("expected waiting acquire to succeed, got %v", err)
	}
	_ = second.Release(ctx)
}

func TestWithLeaseLost(t *testing.T) {
	locks := newFakeLocks()
	client := New(locks)

	opts := Options{TTL: 2 * time.Second, RenewEvery: 10 * time.Millisecond}
	err := client.WithLease(context.Background(), "k", opts, func(ctx context.Context) error {
		locks.steal("k")
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrLost) {
		t.Fatalf("expected ErrLost, got %v", err)
	}
}

func TestWithLeaseRunsFn(t *testing.T) {
	client := New(newFakeLocks())
	called := false
	err := client.WithLease(context.Background(), PlayKey("p2"), ImportOptions, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("expected fn to run without error, got called=%v err=%v", called, err)
	}
}
