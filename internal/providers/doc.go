// Package providers implements the skip-data provider clients. Each
// provider serves one tier of the resolver's fallback chain and
// reports its own availability based on the identifiers and
// credentials it requires. A provider that cannot serve a request is
// skipped, not failed.
package providers
