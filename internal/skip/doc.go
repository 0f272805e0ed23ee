// Package skip resolves the effective skip segments for a media item
// by querying providers in a fixed priority order. The first provider
// returning a non-empty result wins; results are never merged across
// tiers. A winning result from a non-terminal tier is written back to
// the community database in the background.
package skip
