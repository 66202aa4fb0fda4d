package api

import (
	"context"
	"strconv"

	"aoe2-overlay/internal/domain"
)

// StatsClient talks to the game-statistics REST API.
type StatsClient struct {
	http *Client
	root string
}

func NewStatsClient(http *Client, root string) *StatsClient {
	return &StatsClient{http: http, root: root}
}

func (c *StatsClient) fetch(ctx context.Context, e Endpoint) (string, []byte, error) {
	uri, err := e.BuildURI()
	if err != nil {
		return "", nil, err
	}
	body, err := c.http.Get(ctx, uri)
	if err != nil {
		return uri, nil, err
	}
	return uri, body, nil
}

// LastMatch fetches the most recent match for the given player identifier.
func (c *StatsClient) LastMatch(ctx context.Context, game string, kind domain.IDKind, id string) (*LastMatchResponse, error) {
	uri, body, err := c.fetch(ctx, Endpoint{
		Root: c.root,
		Path: "/api/player/lastmatch",
		Params: []Param{
			{Key: "game", Value: game},
			{Key: string(kind), Value: id},
		},
	})
	if err != nil {
		return nil, err
	}
	return Parse[LastMatchResponse](uri, body)
}

// Leaderboard fetches the current standing of one player on one ladder.
func (c *StatsClient) Leaderboard(ctx context.Context, game string, leaderboardID, profileID int) (*LeaderboardResponse, error) {
	uri, body, err := c.fetch(ctx, Endpoint{
		Root: c.root,
		Path: "/api/leaderboard",
		Params: []Param{
			{Key: "game", Value: game},
			{Key: "leaderboard_id", Value: strconv.Itoa(leaderboardID)},
			{Key: "profile_id", Value: strconv.Itoa(profileID)},
		},
	})
	if err != nil {
		return nil, err
	}
	return Parse[LeaderboardResponse](uri, body)
}

// RatingHistory fetches the single most recent rating-history entry for
// one player on one ladder.
func (c *StatsClient) RatingHistory(ctx context.Context, game string, leaderboardID, profileID int) ([]RatingHistoryEntry, error) {
	uri, body, err := c.fetch(ctx, Endpoint{
		Root: c.root,
		Path: "/api/player/ratinghistory",
		Params: []Param{
			{Key: "game", Value: game},
			{Key: "leaderboard_id", Value: strconv.Itoa(leaderboardID)},
			{Key: "profile_id", Value: strconv.Itoa(profileID)},
			{Key: "count", Value: "1"},
		},
	})
	if err != nil {
		return nil, err
	}
	entries, err := Parse[[]RatingHistoryEntry](uri, body)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// Strings fetches the localized string tables for one language.
func (c *StatsClient) Strings(ctx context.Context, game, language string) (*StringsResponse, error) {
	uri, body, err := c.fetch(ctx, Endpoint{
		Root: c.root,
		Path: "/api/strings",
		Params: []Param{
			{Key: "game", Value: game},
			{Key: "language", Value: language},
		},
	})
	if err != nil {
		return nil, err
	}
	return Parse[StringsResponse](uri, body)
}

type LastMatchResponse struct {
	ProfileID int    `json:"profile_id"`
	SteamID   string `json:"steam_id"`
	Name      string `json:"name"`
	Country   string `json:"country"`

	// LastMatch is nil when the player has no recorded match data.
	LastMatch *Match `json:"last_match"`
}

type Match struct {
	MatchID    string `json:"match_id"`
	Name       string `json:"name"`
	NumPlayers int    `json:"num_players"`
	NumSlots   int    `json:"num_slots"`

	// LeaderboardID is nil for unranked lobbies.
	LeaderboardID *int `json:"leaderboard_id"`

	RatingType int         `json:"rating_type"`
	MapSize    int         `json:"map_size"`
	MapType    int         `json:"map_type"`
	GameType   int         `json:"game_type"`
	Server     string      `json:"server"`
	Started    int64       `json:"started"`
	Finished   int64       `json:"finished"`
	Players    []MatchSlot `json:"players"`
}

type MatchSlot struct {
	ProfileID int    `json:"profile_id"`
	SteamID   string `json:"steam_id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Civ       int    `json:"civ"`
	Slot      int    `json:"slot"`
	SlotType  int    `json:"slot_type"`
	Color     int    `json:"color"`
	Team      int    `json:"team"`
	Won       *bool  `json:"won"`
	Rating    *int   `json:"rating"`
}

type LeaderboardResponse struct {
	Total         int                `json:"total"`
	LeaderboardID int                `json:"leaderboard_id"`
	Start         int                `json:"start"`
	Count         int                `json:"count"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}

type LeaderboardEntry struct {
	ProfileID     int    `json:"profile_id"`
	Rank          int    `json:"rank"`
	Rating        int    `json:"rating"`
	HighestRating int    `json:"highest_rating"`
	Streak        int    `json:"streak"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Name          string `json:"name"`
	Clan          string `json:"clan"`
	Country       string `json:"country"`
}

type RatingHistoryEntry struct {
	Rating    int   `json:"rating"`
	NumWins   int   `json:"num_wins"`
	NumLosses int   `json:"num_losses"`
	Streak    int   `json:"streak"`
	Drops     int   `json:"drops"`
	Timestamp int64 `json:"timestamp"`
}

type StringEntry struct {
	ID     int    `json:"id"`
	String string `json:"string"`
}

type StringsResponse struct {
	Language    string        `json:"language"`
	Age         []StringEntry `json:"age"`
	Civ         []StringEntry `json:"civ"`
	GameType    []StringEntry `json:"game_type"`
	Leaderboard []StringEntry `json:"leaderboard"`
	MapSize     []StringEntry `json:"map_size"`
	MapType     []StringEntry `json:"map_type"`
	RatingType  []StringEntry `json:"rating_type"`
}
