// Package correlate drives skip decisions from the live playback
// position. A short-period polling loop compares the position against
// the effective segment set and either auto-seeks past a segment
// (once per item) or toggles a skip affordance through the Sink.
package correlate
