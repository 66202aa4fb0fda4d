package domain

// Player is one entry of the community-maintained reference players file.
// PlatformIDs maps a platform namespace (e.g. "rl", "voobly") to the
// player's identifiers in that namespace.
type Player struct {
	Name        string              `json:"name" yaml:"name"`
	Country     string              `json:"country,omitempty" yaml:"country"`
	Aka         []string            `json:"aka,omitempty" yaml:"aka"`
	PlatformIDs map[string][]string `json:"platforms,omitempty" yaml:"platforms"`
	Liquipedia  string              `json:"liquipedia,omitempty" yaml:"liquipedia"`
	Twitch      string              `json:"twitch,omitempty" yaml:"twitch"`
}

type Team struct {
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbreviation,omitempty"`
	MemberNames  []string `json:"players"`
}

type Platform struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	MatchURL string `json:"match_url,omitempty"`
}

// IDKind enumerates the accepted player identifier namespaces for a
// match-info query.
type IDKind string

const (
	IDKindSteam   IDKind = "steam_id"
	IDKindProfile IDKind = "profile_id"
	IDKindMatch   IDKind = "match_id"
)

func (k IDKind) Valid() bool {
	switch k {
	case IDKindSteam, IDKindProfile, IDKindMatch:
		return true
	}
	return false
}

// RatingStatus states explicitly why a participant's rating block is or is
// not populated. Callers never infer partiality from absent fields alone.
const (
	RatingOK            = "ok"
	RatingNotRanked     = "not_ranked"
	RatingHistoryMissed = "rating_missing"
	RatingFetchFailed   = "fetch_failed"
)

// RatingBlock is a participant's current standing on the match's
// leaderboard, merged from the leaderboard entry and the most recent
// rating-history sample.
type RatingBlock struct {
	Rank          int  `json:"rank"`
	Rating        int  `json:"rating"`
	HighestRating int  `json:"highest_rating,omitempty"`
	Streak        int  `json:"streak"`
	Wins          int  `json:"wins"`
	Losses        int  `json:"losses"`
	LastChange    *int `json:"last_change,omitempty"`
}

type MatchParticipant struct {
	ProfileID int    `json:"profile_id"`
	SteamID   string `json:"steam_id,omitempty"`
	Name      string `json:"name"`
	Country   string `json:"country,omitempty"`
	CivCode   int    `json:"civ"`
	CivName   string `json:"civ_name,omitempty"`
	Color     int    `json:"color"`
	Slot      int    `json:"slot"`
	Team      int    `json:"team"`
	Won       *bool  `json:"won,omitempty"`

	Rating       *RatingBlock `json:"rating,omitempty"`
	RatingStatus string       `json:"rating_status"`

	// Reference is the resolved reference-data alias, nil when the player
	// is not in the reference dataset.
	Reference *Player `json:"reference,omitempty"`
}

type MatchTeam struct {
	ID      int                `json:"id"`
	Players []MatchParticipant `json:"players"`
}

// ErrorDescriptor is the structured error surfaced inside a
// MatchInfoResult when assembly partially or fully failed.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// MatchInfo is the denormalized result consumed by the overlay frontend.
type MatchInfo struct {
	MatchID         string      `json:"match_id"`
	LeaderboardID   int         `json:"leaderboard_id"`
	LeaderboardName string      `json:"leaderboard_name,omitempty"`
	MapTypeCode     int         `json:"map_type"`
	MapName         string      `json:"map_name,omitempty"`
	GameTypeCode    int         `json:"game_type"`
	GameTypeName    string      `json:"game_type_name,omitempty"`
	Server          string      `json:"server,omitempty"`
	Started         int64       `json:"started,omitempty"`
	Finished        int64       `json:"finished,omitempty"`
	Language        string      `json:"language"`
	Teams           []MatchTeam `json:"teams"`

	// Partial is true when any participant or display field is known to
	// be incomplete; ErrorMessage carries the first recorded cause.
	Partial      bool             `json:"partial"`
	ErrorMessage *ErrorDescriptor `json:"error_message,omitempty"`
}
