// Package storage defines the durable key/value storage the client stores
// persist into. It plays the part of the browser's local storage: each client
// instance owns a namespace holding two independent string keys.
package storage

import (
	"context"
	"strings"
)

const (
	// KeyAccessToken holds the serialised customer access token.
	KeyAccessToken = "shopify_access_token"
	// KeyCartID holds the bare remote cart id.
	KeyCartID = "shopify-cart-id"
)

// Storage reads and writes string values. Get returns serviceerr.ErrNotFound
// for a missing key; Delete of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type scoped struct {
	next   Storage
	prefix string
}

// Scoped returns a Storage that confines all keys to the namespace of one
// client instance.
func Scoped(next Storage, clientID string) Storage {
	return &scoped{
		next:   next,
		prefix: strings.TrimSuffix(clientID, ":") + ":",
	}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.next.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.next.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, s.prefix+key)
}
