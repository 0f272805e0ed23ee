package title

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result is the structured form of a media filename.
type Result struct {
	ShowName string
	Season   int
	Episode  int
	// Year is 0 when no release year was found.
	Year int
	// Anime reports that the filename used an absolute episode number
	// convention, which usually signals anime naming.
	Anime bool
}

// EpisodeName returns the plain episode label used by services that key
// on episode names rather than numbers.
func (r Result) EpisodeName() string {
	return fmt.Sprintf("Episode %d", r.Episode)
}

// Season/episode markers, strongest signal first.
var (
	// Show.Name.S02E05, Show S2 E5
	patternSE = regexp.MustCompile(`(?i)(.+?)[\s._-]+s(\d+)[\s._-]*e(\d+)`)
	// Show.2x05
	patternX = regexp.MustCompile(`(.+?)[\s._-]+(\d+)[xX](\d+)`)
	// Show - 05, Show - 05 - Title, Show - 05 [Group]
	patternAnimeAbs = regexp.MustCompile(`(?i)^(.+?)\s*-\s*(\d{1,4})(?:\s*-|\s*\[|\s*\(|$)`)
	// Show Episode 5, Show Ep 5, Show E5
	patternEpisode = regexp.MustCompile(`(?i)(.+?)[\s._-]+(?:episode|ep|e)[\s._-]*(\d+)`)
	// Show.1080.WEBRip: absolute episode separated on both sides. A
	// trailing separator is required, so "1080p"/"1080i" never match.
	patternLooseAbs = regexp.MustCompile(`^(.+?)[\s._-]+(\d{1,4})(?:[\s._-]+|$)`)
	// Movie Title (2023), Movie.Title.2023.
	patternYear = regexp.MustCompile(`(.+?)[\s._\-(]+(\d{4})[)\s._-]`)

	patternExtension    = regexp.MustCompile(`(?i)\.(mkv|mp4|avi|webm|mov)$`)
	patternMultiSpace   = regexp.MustCompile(`\s+`)
	patternTrailingDash = regexp.MustCompile(`[-]+$`)
)

// Scene-release junk stripped from show names. Every alternative is
// word-boundary or separator anchored so nothing matches inside words.
var patternJunk = regexp.MustCompile(`(?i)` + strings.Join([]string{
	// resolutions
	`\b(2160|1080|720|480|576)[pP]\b`,
	`\b(4|8)[kK]\b`, `\b(UHD|HD|SD)\b`,
	// sources
	`\b(BluRay|BDRip|BRRip|BD|DVD|DVDRip|DVDScr|R5)\b`,
	`\b(WEB-DL|WEBRip|WEB|HDTV|PDTV|CAM|TS|TC|REMUX)\b`,
	// codecs
	`\b((x|h)\.?264|(x|h)\.?265|HEVC|AVC|DivX|XviD|MPEG)\b`,
	// audio
	`\b(TrueHD|DTS-HD|DTS|Atmos|DD(\+|P)?\s*5\.1|DD|AAC|AC3|EAC3|FLAC|MP3)\b`,
	`\b(5\.1|7\.1|2\.0)\b`,
	// HDR and video specs
	`\b(HDR(10)?(\+)?|Dolby\s*Vision|DV|10bit|12bit|Hi10P|SDR)\b`,
	`\b(AI\s*Upscale|Upscaled)\b`,
	// release tags
	`\b(REPACK|PROPER|REAL|INTERNAL|FESTIVAL|STV|LIMITED|UNRATED|DC|EXTENDED|REMASTERED|COMPLETE|RESTORED|UNCUT|DIRECTOR'?S\s*CUT)\b`,
	// languages
	`\b(MULTI|DUAL|LATINO|FRENCH|GERMAN|SPANISH|ITA|RUS|JAP|ENG|SUB|DUB)\b`,
	// bracketed groups and trailing -Group
	`[\s._-]\[[^\]]+\]`,
	`[\s._-]\([^\)]+\)`,
	`-[\w\d]+$`,
}, "|"))

// Normalize parses a raw filename or title into its structured parts.
func Normalize(raw string) Result {
	name := raw
	result := Result{Season: 1, Episode: 1}

	switch {
	case applySeasonEpisode(patternSE, &name, &result):
	case applySeasonEpisode(patternX, &name, &result):
	case applyAnimeAbsolute(&name, &result):
	case applyEpisodeOnly(&name, &result):
	default:
		applyLooseAbsolute(raw, &name, &result)
	}

	// Pull a year out of whatever remains of the title.
	if m := patternYear.FindStringSubmatch(name); m != nil {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) > 1 {
			name = candidate
			result.Year = atoi(m[2])
		}
	}

	name = patternJunk.ReplaceAllString(name, " ")
	name = patternExtension.ReplaceAllString(name, "")
	name = strings.NewReplacer(".", " ", "_", " ").Replace(name)
	name = patternMultiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = strings.TrimSpace(patternTrailingDash.ReplaceAllString(name, ""))

	result.ShowName = name
	return result
}

func applySeasonEpisode(pattern *regexp.Regexp, name *string, result *Result) bool {
	m := pattern.FindStringSubmatch(*name)
	if m == nil {
		return false
	}
	*name = strings.TrimSpace(m[1])
	result.Season = atoi(m[2])
	result.Episode = atoi(m[3])
	return true
}

func applyAnimeAbsolute(name *string, result *Result) bool {
	m := patternAnimeAbs.FindStringSubmatch(*name)
	if m == nil {
		return false
	}
	*name = strings.TrimSpace(m[1])
	result.Season = 1
	result.Episode = atoi(m[2])
	result.Anime = true
	return true
}

func applyEpisodeOnly(name *string, result *Result) bool {
	m := patternEpisode.FindStringSubmatch(*name)
	if m == nil {
		return false
	}
	*name = strings.TrimSpace(m[1])
	result.Episode = atoi(m[2])
	return true
}

// applyLooseAbsolute handles bare absolute numbering ("One.Piece.1080").
// A number that looks like the release year is left alone unless a
// separate year token proves it is an episode count.
func applyLooseAbsolute(raw string, name *string, result *Result) bool {
	m := patternLooseAbs.FindStringSubmatch(*name)
	if m == nil {
		return false
	}
	candidate := strings.TrimSpace(m[1])
	episode := atoi(m[2])

	yearMatch := patternYear.FindStringSubmatch(raw)
	hasYear := yearMatch != nil
	likelyYear := episode >= 1900 && episode <= 2100

	if hasYear && atoi(yearMatch[2]) == episode {
		// The matched number is the release year, not an episode.
		return false
	}
	if likelyYear && !hasYear {
		return false
	}

	*name = candidate
	result.Season = 1
	result.Episode = episode
	result.Anime = true
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
