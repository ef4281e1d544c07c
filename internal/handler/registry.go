// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/scriptpack/scriptpack/pkg/repo"
)

// Registry holds the available handlers ordered by ascending Order.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates a registry. Handlers with equal order keep their
// argument order.
func NewRegistry(handlers ...Handler) *Registry {
	hs := slices.Clone(handlers)
	slices.SortStableFunc(hs, func(a, b Handler) int { return cmp.Compare(a.Order(), b.Order()) })
	return &Registry{handlers: hs}
}

// Handlers returns the handlers in selection order.
func (r *Registry) Handlers() []Handler {
	return slices.Clone(r.handlers)
}

// Find returns the first handler whose CanHandle accepts script.
func (r *Registry) Find(ctx context.Context, script repo.FileEntry) (Handler, error) {
	for _, h := range r.handlers {
		if h.CanHandle(ctx, script) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", script.Path, ErrNoHandler)
}

// ByKey returns the handler registered under key.
func (r *Registry) ByKey(key string) (Handler, bool) {
	for _, h := range r.handlers {
		if h.Key() == key {
			return h, true
		}
	}
	return nil, false
}
