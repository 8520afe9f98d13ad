package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/storage"
)

const cleanupInterval = time.Minute

// Registry owns the client instances. A client is created on first use and
// torn down once it has been idle for the configured timeout.
type Registry struct {
	remote  Commerce
	storage storage.Storage
	opts    Options

	mu      sync.Mutex
	clients *cache.Cache
	ctx     context.Context
}

func NewRegistry(ctx context.Context, remote Commerce, st storage.Storage, idleTimeout time.Duration, opts Options) *Registry {
	r := &Registry{
		remote:  remote,
		storage: st,
		opts:    opts,
		clients: cache.New(idleTimeout, cleanupInterval),
		ctx:     context.WithoutCancel(ctx),
	}

	r.clients.OnEvicted(func(id string, v any) {
		if c, ok := v.(*Client); ok && c.Close(r.ctx) {
			r.opts.Recorder.client(r.ctx, -1)
		}
		slogctx.Debug(r.ctx, "Evicted client", "client", id)
	})

	return r
}

// Get returns the started client for id, creating it if needed. Every call
// extends the idle timeout of the client. A start error is returned together
// with the usable client.
func (r *Registry) Get(ctx context.Context, id string) (*Client, error) {
	for {
		c := r.acquire(ctx, id)

		err := c.Start(ctx)
		if errors.Is(err, ErrClosed) {
			// Evicted between acquire and Start.
			continue
		}

		return c, err
	}
}

func (r *Registry) acquire(ctx context.Context, id string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.lookup(id)
	if !ok || c.Closed() {
		// Collects an entry that expired but was not evicted yet, so it is
		// torn down before it is replaced.
		r.clients.Delete(id)

		c = New(id, r.remote, storage.Scoped(r.storage, id), r.opts)
		r.opts.Recorder.client(ctx, 1)
		slogctx.Debug(ctx, "Created client", "client", id)
	}
	r.clients.SetDefault(id, c)

	return c
}

func (r *Registry) lookup(id string) (*Client, bool) {
	v, ok := r.clients.Get(id)
	if !ok {
		return nil, false
	}
	c, ok := v.(*Client)
	return c, ok
}

// Teardown removes a client immediately.
func (r *Registry) Teardown(id string) {
	r.clients.Delete(id)
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	return r.clients.ItemCount()
}

// Close tears down every client.
func (r *Registry) Close() {
	for id := range r.clients.Items() {
		r.clients.Delete(id)
	}
}
