package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devmarvs/secureheaders/security"
)

type stubStore struct {
	headers   []security.Header
	ok        bool
	getErr    error
	setErr    error
	deleteErr error
}

func (s stubStore) Get(ctx context.Context, key string) ([]security.Header, bool, error) {
	return s.headers, s.ok, s.getErr
}

func (s stubStore) Set(ctx context.Context, key string, headers []security.Header, ttl time.Duration) error {
	return s.setErr
}

func (s stubStore) Delete(ctx context.Context, key string) error {
	return s.deleteErr
}

func TestHooksHitMiss(t *testing.T) {
	var hit, miss, served int
	store := stubStore{headers: []security.Header{
		{Key: "X-Frame-Options", Value: "DENY"},
		{Key: "Referrer-Policy", Value: "no-referrer"},
	}, ok: true}
	wrapped := WithHooks(store, Hooks{
		OnHit: func(ctx context.Context, key string, headers int) {
			hit++
			served += headers
		},
		OnMiss: func(ctx context.Context, key string) { miss++ },
	})

	_, ok, err := wrapped.Get(context.Background(), "/")
	if err != nil || !ok {
		t.Fatalf("expected hit, got err=%v ok=%v", err, ok)
	}
	if hit != 1 || miss != 0 {
		t.Fatalf("expected one hit, got hit=%d miss=%d", hit, miss)
	}
	if served != 2 {
		t.Fatalf("expected hit to report 2 headers, got %d", served)
	}

	wrapped = WithHooks(stubStore{}, Hooks{
		OnMiss: func(ctx context.Context, key string) { miss++ },
	})
	_, ok, err = wrapped.Get(context.Background(), "/missing")
	if err != nil || ok {
		t.Fatalf("expected miss, got err=%v ok=%v", err, ok)
	}
	if miss != 1 {
		t.Fatalf("expected miss hook, got %d", miss)
	}
}

func TestHooksSetDeleteAndError(t *testing.T) {
	var setCount, deleteCount, errCount int
	store := stubStore{setErr: errors.New("set failed"), deleteErr: errors.New("delete failed")}
	wrapped := WithHooks(store, Hooks{
		OnSet:    func(ctx context.Context, key string, headers int, ttl time.Duration) { setCount++ },
		OnDelete: func(ctx context.Context, key string) { deleteCount++ },
		OnError:  func(ctx context.Context, op string, key string, err error) { errCount++ },
	})

	if err := wrapped.Set(context.Background(), "/", nil, time.Second); err == nil {
		t.Fatalf("expected set error")
	}
	if err := wrapped.Delete(context.Background(), "/"); err == nil {
		t.Fatalf("expected delete error")
	}
	if setCount != 0 || deleteCount != 0 {
		t.Fatalf("expected no success hooks on error, got set=%d delete=%d", setCount, deleteCount)
	}
	if errCount != 2 {
		t.Fatalf("expected error hooks, got %d", errCount)
	}

	if WithHooks(nil, Hooks{}) != nil {
		t.Fatalf("expected nil store to stay nil")
	}
	plain := stubStore{}
	if _, ok := WithHooks(plain, Hooks{}).(stubStore); !ok {
		t.Fatalf("expected zero hooks to return the store unchanged")
	}
}

func TestHooksSetReportsHeaderCount(t *testing.T) {
	var gotKey string
	var gotHeaders int
	var gotTTL time.Duration
	wrapped := WithHooks(NewMemory(MemoryOptions{}), Hooks{
		OnSet: func(ctx context.Context, key string, headers int, ttl time.Duration) {
			gotKey, gotHeaders, gotTTL = key, headers, ttl
		},
	})

	headers := []security.Header{
		{Key: "Content-Security-Policy", Value: "default-src 'self';"},
		{Key: "X-Frame-Options", Value: "DENY"},
		{Key: "X-Content-Type-Options", Value: "nosniff"},
	}
	if err := wrapped.Set(context.Background(), "0,1", headers, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if gotKey != "0,1" || gotHeaders != 3 || gotTTL != time.Minute {
		t.Fatalf("expected key=0,1 headers=3 ttl=1m, got key=%s headers=%d ttl=%s", gotKey, gotHeaders, gotTTL)
	}

	got, ok, err := wrapped.Get(context.Background(), "0,1")
	if err != nil || !ok || len(got) != 3 {
		t.Fatalf("expected stored headers, got %v ok=%v err=%v", got, ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(MemoryOptions{})
	headers := []security.Header{{Key: "Referrer-Policy", Value: "no-referrer"}}

	if _, ok, _ := store.Get(ctx, "/"); ok {
		t.Fatalf("expected empty store")
	}
	if err := store.Set(ctx, "/", headers, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	headers[0].Value = "mutated"

	got, ok, err := store.Get(ctx, "/")
	if err != nil || !ok {
		t.Fatalf("expected hit, got err=%v ok=%v", err, ok)
	}
	if got[0].Value != "no-referrer" {
		t.Fatalf("expected stored copy, got %q", got[0].Value)
	}
	got[0].Value = "mutated"
	again, _, _ := store.Get(ctx, "/")
	if again[0].Value != "no-referrer" {
		t.Fatalf("expected returned copy, got %q", again[0].Value)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}

	if err := store.Delete(ctx, "/"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "/"); ok {
		t.Fatalf("expected entry deleted")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(MemoryOptions{DefaultTTL: time.Hour})

	if err := store.Set(ctx, "/short", []security.Header{{Key: "a", Value: "b"}}, time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "/short"); ok {
		t.Fatalf("expected entry to expire")
	}
}
