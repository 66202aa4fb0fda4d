package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"aoe2-overlay/internal/api"
	"aoe2-overlay/internal/constants"
	"aoe2-overlay/internal/domain"
	"aoe2-overlay/internal/refdata"
	"aoe2-overlay/internal/repository"

	"github.com/rs/zerolog"
)

// MatchInfoProvider is the aggregator surface the HTTP layer consumes.
type MatchInfoProvider interface {
	GetMatchInfo(ctx context.Context, kind domain.IDKind, id, language, game string) (*domain.MatchInfo, error)
}

// OverlayServer is the thin JSON surface for the overlay frontend.
type OverlayServer struct {
	matchInfo MatchInfoProvider
	store     *refdata.Store
	archive   *repository.MatchArchive
	logger    zerolog.Logger
}

func NewOverlayServer(matchInfo MatchInfoProvider, store *refdata.Store, archive *repository.MatchArchive, logger zerolog.Logger) *OverlayServer {
	return &OverlayServer{matchInfo: matchInfo, store: store, archive: archive, logger: logger}
}

func (s *OverlayServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/matchinfo", s.handleMatchInfo)
	mux.HandleFunc("GET /api/teams", s.handleTeams)
	mux.HandleFunc("GET /api/platforms", s.handlePlatforms)
	mux.HandleFunc("GET /api/matches/recent", s.handleRecentMatches)
	mux.HandleFunc("GET /api/debug/refdata", s.handleDebugRefData)
	return mux
}

func (s *OverlayServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identifierFromQuery picks the one identifier parameter supplied by the
// caller. Supplying none is a client error.
func identifierFromQuery(r *http.Request) (domain.IDKind, string, bool) {
	q := r.URL.Query()
	for _, kind := range []domain.IDKind{domain.IDKindProfile, domain.IDKindSteam, domain.IDKindMatch} {
		if v := q.Get(string(kind)); v != "" {
			return kind, v, true
		}
	}
	return "", "", false
}

func (s *OverlayServer) handleMatchInfo(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := identifierFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "one of profile_id, steam_id or match_id is required")
		return
	}

	language := r.URL.Query().Get("language")
	game := r.URL.Query().Get("game")

	info, err := s.matchInfo.GetMatchInfo(r.Context(), kind, id, language, game)
	if err != nil {
		s.writeMatchInfoError(w, err)
		return
	}

	if s.archive.Enabled() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
			defer cancel()
			if err := s.archive.Record(ctx, info); err != nil {
				s.logger.Warn().Err(err).Str("match_id", info.MatchID).Msg("failed to archive match snapshot")
			}
		}()
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *OverlayServer) writeMatchInfoError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, domain.ErrUnknownIDKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLastMatchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAssembly):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, apiErr.Error())
	default:
		s.logger.Error().Err(err).Msg("match info request failed")
		writeError(w, http.StatusBadGateway, "failed to assemble match info")
	}
}

func (s *OverlayServer) handleTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Teams())
}

func (s *OverlayServer) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Platforms())
}

func (s *OverlayServer) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := constants.RecentMatchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= constants.RecentMatchLimit {
			limit = n
		}
	}

	matches, err := s.archive.Recent(r.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrArchiveDisabled) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("failed to read archived matches")
		writeError(w, http.StatusInternalServerError, "failed to read archived matches")
		return
	}
	if matches == nil {
		matches = []repository.ArchivedMatch{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// handleDebugRefData dumps the current reference snapshot, pretty-printed.
// Diagnostic only, not load-bearing.
func (s *OverlayServer) handleDebugRefData(w http.ResponseWriter, r *http.Request) {
	players, teams, platforms := s.store.Snapshot()
	dump := map[string]any{
		"players":   players,
		"teams":     teams,
		"platforms": platforms,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write refdata dump")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
