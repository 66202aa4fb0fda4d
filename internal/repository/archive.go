package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aoe2-overlay/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// MatchArchive keeps a local record of served match snapshots for the
// overlay's recent-matches view and debugging. With a nil database the
// archive is disabled: Record becomes a no-op and reads report
// ErrArchiveDisabled.
type MatchArchive struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchArchive(db *sql.DB, logger zerolog.Logger) *MatchArchive {
	return &MatchArchive{db: db, logger: logger}
}

func (r *MatchArchive) Enabled() bool { return r.db != nil }

type ArchivedPlayer struct {
	ProfileID     int    `json:"profile_id"`
	Name          string `json:"name"`
	CivName       string `json:"civ_name,omitempty"`
	Team          int    `json:"team"`
	Slot          int    `json:"slot"`
	Won           *bool  `json:"won,omitempty"`
	Rank          *int   `json:"rank,omitempty"`
	Rating        *int   `json:"rating,omitempty"`
	ReferenceName string `json:"reference_name,omitempty"`
}

type ArchivedMatch struct {
	MatchID       string           `json:"match_id"`
	LeaderboardID int              `json:"leaderboard_id"`
	MapName       string           `json:"map_name,omitempty"`
	GameTypeName  string           `json:"game_type_name,omitempty"`
	Server        string           `json:"server,omitempty"`
	Started       int64            `json:"started,omitempty"`
	Partial       bool             `json:"partial"`
	CreatedAt     time.Time        `json:"created_at"`
	Players       []ArchivedPlayer `json:"players"`
}

// Record stores one assembled match snapshot, replacing any prior record
// of the same match id.
func (r *MatchArchive) Record(ctx context.Context, info *domain.MatchInfo) error {
	if r.db == nil {
		return nil
	}

	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM archived_matches WHERE match_id = ?`, info.MatchID); err != nil {
		return fmt.Errorf("failed to clear prior match record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO archived_matches (id, match_id, leaderboard_id, map_name, game_type_name, server, started, partial, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, info.MatchID, info.LeaderboardID, info.MapName, info.GameTypeName,
		info.Server, info.Started, info.Partial, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert match record: %w", err)
	}

	for _, team := range info.Teams {
		for _, p := range team.Players {
			var rank, rating *int
			if p.Rating != nil {
				rank = &p.Rating.Rank
				rating = &p.Rating.Rating
			}
			referenceName := ""
			if p.Reference != nil {
				referenceName = p.Reference.Name
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO archived_match_players (match_row_id, profile_id, name, civ_name, team, slot, won, rank, rating, reference_name)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, p.ProfileID, p.Name, p.CivName, team.ID, p.Slot, p.Won, rank, rating, referenceName)
			if err != nil {
				return fmt.Errorf("failed to insert match player: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match record: %w", err)
	}

	r.logger.Debug().Str("match_id", info.MatchID).Msg("match snapshot archived")
	return nil
}

// Recent returns the most recently archived matches, newest first.
func (r *MatchArchive) Recent(ctx context.Context, limit int) ([]ArchivedMatch, error) {
	if r.db == nil {
		return nil, domain.ErrArchiveDisabled
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, match_id, leaderboard_id, map_name, game_type_name, server, started, partial, created_at
		FROM archived_matches
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived matches: %w", err)
	}
	defer rows.Close()

	var matches []ArchivedMatch
	var rowIDs []string
	for rows.Next() {
		var rowID string
		var m ArchivedMatch
		if err := rows.Scan(&rowID, &m.MatchID, &m.LeaderboardID, &m.MapName, &m.GameTypeName,
			&m.Server, &m.Started, &m.Partial, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archived match: %w", err)
		}
		matches = append(matches, m)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate archived matches: %w", err)
	}

	for i, rowID := range rowIDs {
		players, err := r.matchPlayers(ctx, rowID)
		if err != nil {
			return nil, err
		}
		matches[i].Players = players
	}
	return matches, nil
}

func (r *MatchArchive) matchPlayers(ctx context.Context, rowID string) ([]ArchivedPlayer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile_id, name, civ_name, team, slot, won, rank, rating, reference_name
		FROM archived_match_players
		WHERE match_row_id = ?
		ORDER BY team, slot`, rowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived match players: %w", err)
	}
	defer rows.Close()

	var players []ArchivedPlayer
	for rows.Next() {
		var p ArchivedPlayer
		if err := rows.Scan(&p.ProfileID, &p.Name, &p.CivName, &p.Team, &p.Slot,
			&p.Won, &p.Rank, &p.Rating, &p.ReferenceName); err != nil {
			return nil, fmt.Errorf("failed to scan archived match player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
