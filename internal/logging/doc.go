// Package logging wraps log/slog with the attribute helpers and
// standardized field keys used across the engine. All components log
// through a *slog.Logger obtained here so that console and JSON output
// share the same vocabulary.
package logging
