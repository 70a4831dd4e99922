package platform

import (
	"context"

	"github.com/aretw0/bloco/pkg/core"
)

// New creates a store over the configured storage without loading it.
//
//	store, err := bloco.New("./notes", bloco.WithAdapter("sqlite"))
func New(uri string, opts ...Option) (*core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	kv, err := initKV(context.Background(), uri, o)
	if err != nil {
		return nil, err
	}
	return core.NewStore(kv, o.storeOptions()...), nil
}

// Open creates a store and loads it, seeding the welcome note on first use.
func Open(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	store, err := New(uri, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
