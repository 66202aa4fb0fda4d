package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"aoe2-overlay/internal/api"
	"aoe2-overlay/internal/constants"
	"aoe2-overlay/internal/domain"
	"aoe2-overlay/internal/lang"
	"aoe2-overlay/internal/refdata"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StatsAPI is the slice of the stats client the aggregator needs.
type StatsAPI interface {
	LastMatch(ctx context.Context, game string, kind domain.IDKind, id string) (*api.LastMatchResponse, error)
	Leaderboard(ctx context.Context, game string, leaderboardID, profileID int) (*api.LeaderboardResponse, error)
	RatingHistory(ctx context.Context, game string, leaderboardID, profileID int) ([]api.RatingHistoryEntry, error)
}

// MatchInfoService assembles one player's current match context from the
// stats API and the reference snapshot.
type MatchInfoService struct {
	stats           StatsAPI
	store           *refdata.Store
	langs           *lang.Cache
	defaultGame     string
	defaultLanguage string
	logger          zerolog.Logger
}

func NewMatchInfoService(stats StatsAPI, store *refdata.Store, langs *lang.Cache, defaultGame, defaultLanguage string, logger zerolog.Logger) *MatchInfoService {
	return &MatchInfoService{
		stats:           stats,
		store:           store,
		langs:           langs,
		defaultGame:     defaultGame,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// ratingLookup holds the per-participant fan-out results. Each participant
// owns one slot, so the goroutines need no shared locking.
type ratingLookup struct {
	entry   *api.LeaderboardEntry
	history *api.RatingHistoryEntry
	lbErr   error
	rhErr   error
}

// GetMatchInfo runs the full aggregation: last match, per-participant
// leaderboard and rating-history fan-out, alias resolution, string
// translation and team grouping. Per-participant failures degrade that
// participant only; the initial last-match fetch is the one load-bearing
// request.
func (s *MatchInfoService) GetMatchInfo(ctx context.Context, kind domain.IDKind, id, language, game string) (*domain.MatchInfo, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIDKind, kind)
	}
	if game == "" {
		game = s.defaultGame
	}
	if language == "" || !lang.IsSupported(language) {
		language = s.defaultLanguage
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().
		Str("id_kind", string(kind)).
		Str("id", id).
		Str("language", language).
		Str("game", game).
		Msg("assembling match info")

	lastCtx, lastCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer lastCancel()

	resp, err := s.stats.LastMatch(lastCtx, game, kind, id)
	if err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("last match fetch failed")
		return nil, err
	}
	if resp.LastMatch == nil {
		s.logger.Info().Str("id", id).Msg("player has no recorded match")
		return nil, domain.ErrLastMatchNotFound
	}
	match := resp.LastMatch
	if len(match.Players) == 0 {
		return nil, domain.ErrAssembly
	}

	ranked := match.LeaderboardID != nil
	leaderboardID := 0
	if ranked {
		leaderboardID = *match.LeaderboardID
	}

	lookups := s.fetchRatings(ctx, game, leaderboardID, ranked, match.Players)

	info := &domain.MatchInfo{
		MatchID:       match.MatchID,
		LeaderboardID: leaderboardID,
		MapTypeCode:   match.MapType,
		GameTypeCode:  match.GameType,
		Server:        match.Server,
		Started:       match.Started,
		Finished:      match.Finished,
		Language:      language,
	}

	recordPartial := func(kind string, err error) {
		info.Partial = true
		if info.ErrorMessage == nil {
			info.ErrorMessage = &domain.ErrorDescriptor{Kind: kind, Message: err.Error()}
		}
	}

	resolve := func(category string, code int) string {
		name, err := s.langs.Resolve(language, category, code)
		if err != nil {
			s.logger.Debug().Err(err).Str("category", category).Int("code", code).Msg("translation missing")
			recordPartial("translation", err)
			return ""
		}
		return name
	}

	info.MapName = resolve(lang.CategoryMapType, match.MapType)
	info.GameTypeName = resolve(lang.CategoryGameType, match.GameType)
	if ranked {
		info.LeaderboardName = resolve(lang.CategoryLeaderboard, leaderboardID)
	}

	participants := make([]domain.MatchParticipant, 0, len(match.Players))
	for i, slot := range match.Players {
		p := domain.MatchParticipant{
			ProfileID: slot.ProfileID,
			SteamID:   slot.SteamID,
			Name:      slot.Name,
			Country:   slot.Country,
			CivCode:   slot.Civ,
			Color:     slot.Color,
			Slot:      slot.Slot,
			Team:      slot.Team,
			Won:       slot.Won,
		}
		p.CivName = resolve(lang.CategoryCiv, slot.Civ)

		p.Rating, p.RatingStatus = s.classifyRating(leaderboardID, slot.ProfileID, lookups[i])
		if p.RatingStatus != domain.RatingOK {
			recordPartial("rating", ratingStatusError(p.RatingStatus, slot.ProfileID, leaderboardID, lookups[i]))
		}

		if alias, ok := s.store.LookupAlias(strconv.Itoa(slot.ProfileID)); ok {
			p.Reference = &alias
		}

		participants = append(participants, p)
	}

	info.Teams = groupTeams(participants)

	s.logger.Info().
		Str("match_id", info.MatchID).
		Int("teams", len(info.Teams)).
		Int("participants", len(participants)).
		Bool("partial", info.Partial).
		Msg("match info assembled")

	return info, nil
}

// fetchRatings issues the leaderboard and rating-history requests for all
// participants concurrently. Failures land in the participant's slot; no
// lookup aborts another.
func (s *MatchInfoService) fetchRatings(ctx context.Context, game string, leaderboardID int, ranked bool, slots []api.MatchSlot) []ratingLookup {
	lookups := make([]ratingLookup, len(slots))
	if !ranked {
		return lookups
	}

	var g errgroup.Group
	for i, slot := range slots {
		if slot.ProfileID == 0 {
			continue
		}
		g.Go(func() error {
			lbCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			resp, err := s.stats.Leaderboard(lbCtx, game, leaderboardID, slot.ProfileID)
			if err != nil {
				lookups[i].lbErr = err
				return nil
			}
			if len(resp.Leaderboard) > 0 {
				lookups[i].entry = &resp.Leaderboard[0]
			}
			return nil
		})
		g.Go(func() error {
			rhCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			entries, err := s.stats.RatingHistory(rhCtx, game, leaderboardID, slot.ProfileID)
			if err != nil {
				lookups[i].rhErr = err
				return nil
			}
			if len(entries) > 0 {
				lookups[i].history = &entries[0]
			}
			return nil
		})
	}
	g.Wait()
	return lookups
}

func (s *MatchInfoService) classifyRating(leaderboardID, profileID int, l ratingLookup) (*domain.RatingBlock, string) {
	if profileID == 0 {
		return nil, domain.RatingNotRanked
	}
	if l.lbErr != nil {
		s.logger.Warn().Err(l.lbErr).Int("profile_id", profileID).Msg("leaderboard lookup failed")
		return nil, domain.RatingFetchFailed
	}
	if l.entry == nil {
		return nil, domain.RatingNotRanked
	}

	block := &domain.RatingBlock{
		Rank:          l.entry.Rank,
		Rating:        l.entry.Rating,
		HighestRating: l.entry.HighestRating,
		Streak:        l.entry.Streak,
		Wins:          l.entry.Wins,
		Losses:        l.entry.Losses,
	}
	if l.rhErr != nil {
		s.logger.Warn().Err(l.rhErr).Int("profile_id", profileID).Msg("rating history lookup failed")
		return block, domain.RatingFetchFailed
	}
	if l.history == nil {
		return block, domain.RatingHistoryMissed
	}

	change := l.entry.Rating - l.history.Rating
	block.LastChange = &change
	return block, domain.RatingOK
}

func ratingStatusError(status string, profileID, leaderboardID int, l ratingLookup) error {
	switch status {
	case domain.RatingNotRanked:
		return &domain.NotRankedError{ProfileID: profileID, LeaderboardID: leaderboardID}
	case domain.RatingHistoryMissed:
		return &domain.RatingNotFoundError{ProfileID: profileID, LeaderboardID: leaderboardID}
	default:
		err := l.lbErr
		if err == nil {
			err = l.rhErr
		}
		if err == nil {
			err = errors.New("rating lookup failed")
		}
		return err
	}
}

// groupTeams orders teams by ascending numeric id, with unassigned (-1)
// teams last; participants keep the slot order reported upstream.
func groupTeams(participants []domain.MatchParticipant) []domain.MatchTeam {
	byID := make(map[int][]domain.MatchParticipant)
	var ids []int
	for _, p := range participants {
		if _, ok := byID[p.Team]; !ok {
			ids = append(ids, p.Team)
		}
		byID[p.Team] = append(byID[p.Team], p)
	}
	sort.Slice(ids, func(i, j int) bool {
		if (ids[i] < 0) != (ids[j] < 0) {
			return ids[j] < 0
		}
		return ids[i] < ids[j]
	})

	teams := make([]domain.MatchTeam, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, domain.MatchTeam{ID: id, Players: byID[id]})
	}
	return teams
}
