package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID is the standardized structured logging key for playback session identifiers.
	FieldSessionID = "session_id"
	// FieldProvider is the standardized structured logging key for skip provider names.
	FieldProvider = "provider"
	// FieldTier is the standardized structured logging key for the 1-based fallback tier.
	FieldTier = "tier"
	// FieldShow is the standardized structured logging key for show names.
	FieldShow = "show"
	// FieldSeason is the standardized structured logging key for season numbers.
	FieldSeason = "season"
	// FieldEpisode is the standardized structured logging key for episode numbers.
	FieldEpisode = "episode"
	// FieldImdbID is the standardized structured logging key for IMDB identifiers.
	FieldImdbID = "imdb_id"
	// FieldMalID is the standardized structured logging key for MyAnimeList identifiers.
	FieldMalID = "mal_id"
	// FieldPositionMs is the standardized structured logging key for playback positions.
	FieldPositionMs = "position_ms"
)
