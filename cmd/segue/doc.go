// Package main hosts the segue CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the engine's pipeline stages as
// individual commands: filename normalization, identity resolution,
// tiered skip-segment resolution, community submission, and cache
// maintenance. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
