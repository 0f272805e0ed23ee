package providers

import (
	"context"

	"segue/internal/identity"
	"segue/internal/segments"
)

// Request carries everything a provider may key on. Providers inspect
// only the fields they need; missing identifiers make the provider
// unavailable rather than erroring.
type Request struct {
	Identity identity.Identity
}

// Client is one tier of the skip-data fallback chain.
type Client interface {
	// Name identifies the provider in logs and segment sources.
	Name() string
	// Available reports whether the provider can serve this request
	// with the identifiers and credentials it has. Unavailable tiers
	// are skipped without counting as failures.
	Available(req Request) bool
	// Fetch queries the provider. An empty set with a nil error means
	// the provider has no data for this episode.
	Fetch(ctx context.Context, req Request) (segments.Set, error)
}
