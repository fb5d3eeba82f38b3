// Package middleware decorates a ports.StateStore with at-rest behavior.
package middleware

import "github.com/aretw0/heartsquest/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain wraps store with each middleware in order; the first one given is
// the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
