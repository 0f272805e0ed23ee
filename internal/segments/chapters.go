package segments

import "strings"

// Chapter is one embedded chapter marker reported by the playback clock.
type Chapter struct {
	Title   string
	StartMs int64
	EndMs   int64
}

// Chapter titles recognized as intro/recap markers.
var introKeywords = []string{"intro", "opening", "prologue", "theme", "credit"}

// FromChapters scans embedded chapter metadata for intro-like markers
// and converts them to an authoritative segment set. The returned set
// has ChapterOverride true when any marker matched.
func FromChapters(chapters []Chapter) Set {
	var out []Segment
	for _, ch := range chapters {
		if !isIntroChapter(ch.Title) {
			continue
		}
		seg := Segment{
			StartSec: float64(ch.StartMs) / 1000.0,
			EndSec:   float64(ch.EndMs) / 1000.0,
		}
		if seg.Valid() {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return Set{}
	}
	return Set{Segments: out, ChapterOverride: true, Source: "chapters"}
}

func isIntroChapter(titleText string) bool {
	lower := strings.ToLower(strings.TrimSpace(titleText))
	if lower == "" {
		return false
	}
	if lower == "op" {
		return true
	}
	for _, keyword := range introKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
