// Package services defines the shared error taxonomy for the engine's
// external-facing components. Provider and tracker failures are tagged
// with sentinel markers so callers can classify them without string
// matching.
package services
