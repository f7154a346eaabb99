package cache

import (
	"context"
	"time"

	"github.com/devmarvs/secureheaders/security"
)

// Hooks observes the header sets flowing through a store. Hit and Set
// callbacks receive the number of headers involved so callers can track
// how much of the emitted header list is served from cache.
type Hooks struct {
	OnHit    func(ctx context.Context, key string, headers int)
	OnMiss   func(ctx context.Context, key string)
	OnSet    func(ctx context.Context, key string, headers int, ttl time.Duration)
	OnDelete func(ctx context.Context, key string)
	OnError  func(ctx context.Context, op string, key string, err error)
}

// WithHooks returns store unchanged when no callback is set.
func WithHooks(store Store, hooks Hooks) Store {
	if store == nil {
		return nil
	}
	if hooks.OnHit == nil && hooks.OnMiss == nil && hooks.OnSet == nil && hooks.OnDelete == nil && hooks.OnError == nil {
		return store
	}
	return observedStore{store: store, hooks: hooks}
}

type observedStore struct {
	store Store
	hooks Hooks
}

func (o observedStore) Get(ctx context.Context, key string) ([]security.Header, bool, error) {
	headers, found, err := o.store.Get(ctx, key)
	switch {
	case err != nil:
		o.failed(ctx, "get", key, err)
	case found && o.hooks.OnHit != nil:
		o.hooks.OnHit(ctx, key, len(headers))
	case !found && o.hooks.OnMiss != nil:
		o.hooks.OnMiss(ctx, key)
	}
	return headers, found, err
}

func (o observedStore) Set(ctx context.Context, key string, headers []security.Header, ttl time.Duration) error {
	err := o.store.Set(ctx, key, headers, ttl)
	if err != nil {
		o.failed(ctx, "set", key, err)
	} else if o.hooks.OnSet != nil {
		o.hooks.OnSet(ctx, key, len(headers), ttl)
	}
	return err
}

func (o observedStore) Delete(ctx context.Context, key string) error {
	err := o.store.Delete(ctx, key)
	if err != nil {
		o.failed(ctx, "delete", key, err)
	} else if o.hooks.OnDelete != nil {
		o.hooks.OnDelete(ctx, key)
	}
	return err
}

func (o observedStore) failed(ctx context.Context, op, key string, err error) {
	if o.hooks.OnError != nil {
		o.hooks.OnError(ctx, op, key, err)
	}
}
