// Package skipcache persists resolved identities and segment sets in
// SQLite so repeated playback of the same episode skips the provider
// chain entirely. Entries expire on a configurable TTL. The cache
// directory is guarded with an advisory lock so concurrent engine
// processes do not share one database file.
package skipcache
