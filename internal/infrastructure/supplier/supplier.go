// Package supplier defines the boundary to external parts-catalog providers.
// Each provider ships its own client under a subpackage; the registry
// resolves a supplier slug to a client at request time.
package supplier

import (
	"context"
	"sort"
	"strings"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
)

// Client is a parts-catalog provider. Search returns normalized candidate
// parts plus the provider-reported total match count; a search with zero
// candidates returns an empty slice and no error. Finalize completes lazily
// fetched fields (e.g. deferred pricing) on a selected candidate and must be
// idempotent.
type Client interface {
	Slug() string
	Name() string
	CompanyID() *int
	Search(ctx context.Context, partNumber string) ([]part.Part, int, error)
	Finalize(ctx context.Context, p *part.Part) error
}

// Registry resolves supplier slugs to clients. Read-only after construction.
type Registry struct {
	clients map[string]Client
}

// NewRegistry builds a registry from the given clients, keyed by slug.
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		r.clients[strings.ToLower(c.Slug())] = c
	}
	return r
}

// Get returns the client for a slug, or a configuration error naming the
// known suppliers when the slug is not registered.
func (r *Registry) Get(slug string) (Client, error) {
	client, ok := r.clients[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, apperror.NewConfiguration("supplier is not configured").
			WithDetail("supplier", slug).
			WithDetail("configured", r.Slugs())
	}
	return client, nil
}

// Slugs returns the registered supplier slugs, sorted.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.clients))
	for slug := range r.clients {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Len returns the number of registered suppliers.
func (r *Registry) Len() int {
	return len(r.clients)
}
