package refdata

import (
	"sync"

	"aoe2-overlay/internal/domain"

	"github.com/rs/zerolog"
)

// PlayerAlreadyExisting records a reference-data integrity problem: two
// distinct players claim the same identifier in the indexed platform
// namespace. Logged and tolerated; the first-encountered mapping wins.
type PlayerAlreadyExisting struct {
	Name              string
	ProfileID         string
	Position          int
	CollisionPosition int
}

// Store holds the authoritative in-memory snapshot of player, team and
// platform reference data, plus an identifier index over one platform
// namespace. The snapshot is replaced wholesale on refresh, never mutated
// in place, so readers holding a returned slice keep a stable view.
type Store struct {
	mu        sync.RWMutex
	players   []domain.Player
	teams     []domain.Team
	platforms []domain.Platform
	index     map[string]int

	indexPlatform string
	logger        zerolog.Logger
}

func NewStore(indexPlatform string, logger zerolog.Logger) *Store {
	return &Store{
		index:         map[string]int{},
		indexPlatform: indexPlatform,
		logger:        logger,
	}
}

// ReplaceSnapshot swaps all three lists and rebuilds the identifier index
// under a single exclusive lock acquisition, so concurrent readers observe
// either the full old snapshot or the full new one. Collisions do not
// abort indexing; they are logged and returned.
func (s *Store) ReplaceSnapshot(players []domain.Player, teams []domain.Team, platforms []domain.Platform) []PlayerAlreadyExisting {
	index, collisions := buildIndex(players, s.indexPlatform)

	s.mu.Lock()
	s.players = players
	s.teams = teams
	s.platforms = platforms
	s.index = index
	s.mu.Unlock()

	for _, c := range collisions {
		s.logger.Warn().
			Str("name", c.Name).
			Str("profile_id", c.ProfileID).
			Int("position", c.Position).
			Int("collision_position", c.CollisionPosition).
			Msg("reference player identifier collision, keeping first mapping")
	}
	s.logger.Info().
		Int("players", len(players)).
		Int("teams", len(teams)).
		Int("platforms", len(platforms)).
		Int("indexed_ids", len(index)).
		Msg("reference snapshot replaced")

	return collisions
}

func buildIndex(players []domain.Player, platform string) (map[string]int, []PlayerAlreadyExisting) {
	index := make(map[string]int)
	var collisions []PlayerAlreadyExisting
	for pos, player := range players {
		for _, id := range player.PlatformIDs[platform] {
			if existing, ok := index[id]; ok {
				collisions = append(collisions, PlayerAlreadyExisting{
					Name:              player.Name,
					ProfileID:         id,
					Position:          existing,
					CollisionPosition: pos,
				})
				continue
			}
			index[id] = pos
		}
	}
	return index, collisions
}

// LookupAlias resolves a platform-specific player identifier to its
// reference entry. Absence is expected and common; it is not an error.
func (s *Store) LookupAlias(id string) (domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		return domain.Player{}, false
	}
	return s.players[pos], true
}

func (s *Store) Players() []domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players
}

func (s *Store) Teams() []domain.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teams
}

func (s *Store) Platforms() []domain.Platform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.platforms
}

// Snapshot returns all three lists from one lock acquisition, for the
// debug export.
func (s *Store) Snapshot() ([]domain.Player, []domain.Team, []domain.Platform) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players, s.teams, s.platforms
}
