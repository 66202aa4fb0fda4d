package refdata

import (
	"strconv"
	"sync"
	"testing"

	"aoe2-overlay/internal/domain"

	"github.com/rs/zerolog"
)

func testStore() *Store {
	return NewStore("rl", zerolog.Nop())
}

func refPlayer(name string, rlIDs ...string) domain.Player {
	return domain.Player{
		Name:        name,
		PlatformIDs: map[string][]string{"rl": rlIDs},
	}
}

func TestLookupAlias(t *testing.T) {
	s := testStore()
	s.ReplaceSnapshot([]domain.Player{
		refPlayer("TheViper", "196240"),
		refPlayer("Hera", "199325", "229123"),
	}, nil, nil)

	p, ok := s.LookupAlias("199325")
	if !ok {
		t.Fatal("expected alias for 199325")
	}
	if p.Name != "Hera" {
		t.Errorf("want Hera, got %s", p.Name)
	}

	if _, ok := s.LookupAlias("999999"); ok {
		t.Error("unknown identifier must resolve to nothing")
	}
}

func TestLookupAlias_OtherPlatformNotIndexed(t *testing.T) {
	s := testStore()
	s.ReplaceSnapshot([]domain.Player{
		{Name: "DauT", PlatformIDs: map[string][]string{"voobly": {"123"}}},
	}, nil, nil)

	if _, ok := s.LookupAlias("123"); ok {
		t.Error("identifiers of other platform namespaces must not be indexed")
	}
}

func TestReindexIsIdempotent(t *testing.T) {
	players := []domain.Player{
		refPlayer("TheViper", "196240"),
		refPlayer("Hera", "199325"),
	}
	first, _ := buildIndex(players, "rl")
	second, _ := buildIndex(players, "rl")

	if len(first) != len(second) {
		t.Fatalf("index sizes differ: %d vs %d", len(first), len(second))
	}
	for id, pos := range first {
		if second[id] != pos {
			t.Errorf("index for %s differs: %d vs %d", id, pos, second[id])
		}
	}
}

func TestCollisionTolerated(t *testing.T) {
	s := testStore()
	collisions := s.ReplaceSnapshot([]domain.Player{
		refPlayer("First", "196240"),
		refPlayer("Second", "196240"),
		refPlayer("Third", "300000"),
	}, nil, nil)

	if len(collisions) != 1 {
		t.Fatalf("want 1 collision diagnostic, got %d", len(collisions))
	}
	c := collisions[0]
	if c.ProfileID != "196240" || c.Name != "Second" {
		t.Errorf("unexpected diagnostic: %+v", c)
	}
	if c.Position != 0 || c.CollisionPosition != 1 {
		t.Errorf("diagnostic positions wrong: %+v", c)
	}

	// First-encountered mapping wins; other players stay indexed.
	p, ok := s.LookupAlias("196240")
	if !ok || p.Name != "First" {
		t.Errorf("want First for 196240, got %v ok=%v", p.Name, ok)
	}
	if _, ok := s.LookupAlias("300000"); !ok {
		t.Error("collision must not disable indexing of remaining players")
	}
}

func TestSnapshotAtomicity(t *testing.T) {
	s := testStore()

	// Each generation pairs players and teams with a matching marker; a
	// reader must never observe players of one generation with teams of
	// another.
	write := func(gen int) {
		marker := strconv.Itoa(gen)
		s.ReplaceSnapshot(
			[]domain.Player{refPlayer(marker, marker)},
			[]domain.Team{{Name: marker}},
			nil,
		)
	}
	write(0)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for gen := 1; gen <= 200; gen++ {
			write(gen)
		}
		close(done)
	}()

	for {
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
		players, teams, _ := s.Snapshot()
		if len(players) != 1 || len(teams) != 1 {
			t.Fatalf("unexpected snapshot sizes: %d players, %d teams", len(players), len(teams))
		}
		if players[0].Name != teams[0].Name {
			t.Fatalf("mixed snapshot observed: players gen %s, teams gen %s", players[0].Name, teams[0].Name)
		}
	}
}

func TestStableViewAfterReplace(t *testing.T) {
	s := testStore()
	s.ReplaceSnapshot([]domain.Player{refPlayer("old", "1")}, nil, nil)
	old := s.Players()

	s.ReplaceSnapshot([]domain.Player{refPlayer("new", "2")}, nil, nil)

	if old[0].Name != "old" {
		t.Error("previously returned slice must keep the old snapshot")
	}
	if s.Players()[0].Name != "new" {
		t.Error("store must serve the new snapshot")
	}
}
