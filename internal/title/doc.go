// Package title turns release-style filenames into a structured show
// name, season, episode, and year. Normalization is deterministic, does
// no I/O, and never fails: unparseable input falls back to season 1,
// episode 1 with the raw basename as the show name.
package title
