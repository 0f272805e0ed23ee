// Package identity derives a canonical external identity for a media
// item from its normalized title: an IMDB ID via the Cinemeta catalog
// and a MyAnimeList ID via the Jikan API. Lookups are best-effort,
// single-attempt, and cached per show/year for the life of the
// resolver.
package identity
