// Package session owns per-item playback state and wires the engine
// together: title normalization, identity resolution, tiered skip
// lookup, the correlation loop, and scrobbling. Host calls are
// serialized by the session mutex; resolution runs on a background
// goroutine per media load and stale results are dropped by generation
// number.
package session
