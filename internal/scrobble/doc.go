// Package scrobble reports watch progress to a remote tracking
// service. A small per-item state machine translates playback
// transitions into start, pause and stop events; no periodic events
// are emitted. Identity can be backfilled after the session started,
// in which case the suppressed start event is sent late.
package scrobble
