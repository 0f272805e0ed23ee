package segments

import (
	"fmt"
	"math"
)

// Segment is a half-open interval [StartSec, EndSec) in seconds.
type Segment struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

// Valid reports whether the interval is well-formed.
func (s Segment) Valid() bool {
	return s.StartSec >= 0 && s.EndSec > s.StartSec
}

// DurationSec returns the interval length in seconds.
func (s Segment) DurationSec() float64 {
	return s.EndSec - s.StartSec
}

func (s Segment) String() string {
	return fmt.Sprintf("[%.2fs - %.2fs)", s.StartSec, s.EndSec)
}

// StartMs and EndMs round to the nearest millisecond. This is the
// boundary used by the correlation tick loop.
func (s Segment) StartMs() int64 { return int64(math.Round(s.StartSec * 1000)) }

func (s Segment) EndMs() int64 { return int64(math.Round(s.EndSec * 1000)) }

// StartMsTrunc and EndMsTrunc truncate toward zero. The manual
// skip-button path has always truncated while the tick loop rounds; the
// two can disagree by up to 1ms at a boundary. Both are kept so each
// call site preserves its historical behavior.
func (s Segment) StartMsTrunc() int64 { return int64(s.StartSec * 1000) }

func (s Segment) EndMsTrunc() int64 { return int64(s.EndSec * 1000) }

// Set is an ordered list of segments for one media item plus the flag
// marking the set as chapter-derived. Once ChapterOverride is true the
// set must not be replaced for the item's lifetime.
type Set struct {
	Segments        []Segment `json:"segments"`
	ChapterOverride bool      `json:"chapter_override"`
	// Source names where the segments came from (a provider name or
	// "chapters"). Informational only.
	Source string `json:"source,omitempty"`
}

// Empty reports whether the set carries no segments.
func (s Set) Empty() bool {
	return len(s.Segments) == 0
}

// Containing returns the first segment whose half-open interval holds
// positionMs after applying shiftMs, using rounded boundaries. Segments
// are assumed non-overlapping, so first match wins.
func (s Set) Containing(positionMs, shiftMs int64) (Segment, bool) {
	for _, seg := range s.Segments {
		start := seg.StartMs() + shiftMs
		end := seg.EndMs() + shiftMs
		if positionMs >= start && positionMs < end {
			return seg, true
		}
	}
	return Segment{}, false
}

// ContainingTrunc is Containing with truncated boundaries, used by the
// manual skip path.
func (s Set) ContainingTrunc(positionMs, shiftMs int64) (Segment, bool) {
	for _, seg := range s.Segments {
		start := seg.StartMsTrunc() + shiftMs
		end := seg.EndMsTrunc() + shiftMs
		if positionMs >= start && positionMs < end {
			return seg, true
		}
	}
	return Segment{}, false
}

// Upcoming returns the first segment starting within (positionMs,
// positionMs+windowMs], so hosts can surface the affordance shortly
// before a segment begins.
func (s Set) Upcoming(positionMs, shiftMs, windowMs int64) (Segment, bool) {
	for _, seg := range s.Segments {
		start := seg.StartMs() + shiftMs
		if start > positionMs && start <= positionMs+windowMs {
			return seg, true
		}
	}
	return Segment{}, false
}
