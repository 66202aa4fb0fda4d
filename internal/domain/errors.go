package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLastMatchNotFound means the stats API has no recorded match for
	// the queried player. Expected for unranked or new players.
	ErrLastMatchNotFound = errors.New("no last match recorded for player")

	// ErrAssembly means no participant data could be assembled at all.
	ErrAssembly = errors.New("could not assemble any match participant data")

	// ErrUnknownIDKind means the caller supplied an identifier kind
	// outside the accepted enumeration.
	ErrUnknownIDKind = errors.New("unknown player identifier kind")

	// ErrArchiveDisabled means no archive database is configured.
	ErrArchiveDisabled = errors.New("match archive is disabled")
)

// NotRankedError means the participant has no entry on the match's
// leaderboard.
type NotRankedError struct {
	ProfileID     int
	LeaderboardID int
}

func (e *NotRankedError) Error() string {
	return fmt.Sprintf("profile %d not ranked on leaderboard %d", e.ProfileID, e.LeaderboardID)
}

// RatingNotFoundError means the participant has no rating-history entry on
// the match's leaderboard.
type RatingNotFoundError struct {
	ProfileID     int
	LeaderboardID int
}

func (e *RatingNotFoundError) Error() string {
	return fmt.Sprintf("no rating history for profile %d on leaderboard %d", e.ProfileID, e.LeaderboardID)
}

// TranslationError means a display string could not be resolved in either
// the requested or the default language.
type TranslationError struct {
	Key   string
	Index int
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("no translation for %s code %d", e.Key, e.Index)
}
