package preload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aoe2-overlay/internal/api"
	"aoe2-overlay/internal/domain"
	"aoe2-overlay/internal/lang"
	"aoe2-overlay/internal/refdata"

	"github.com/rs/zerolog"
)

type fakeRefSource struct {
	players      []domain.Player
	teams        []domain.Team
	platforms    []domain.Platform
	playersErr   error
	teamsErr     error
	platformsErr error
}

func (f *fakeRefSource) FetchPlayers(ctx context.Context) ([]domain.Player, error) {
	return f.players, f.playersErr
}

func (f *fakeRefSource) FetchTeams(ctx context.Context) ([]domain.Team, error) {
	return f.teams, f.teamsErr
}

func (f *fakeRefSource) FetchPlatforms(ctx context.Context) ([]domain.Platform, error) {
	return f.platforms, f.platformsErr
}

type fakeStringsSource struct {
	mu       sync.Mutex
	calls    int
	failLang string
}

func (f *fakeStringsSource) Strings(ctx context.Context, game, language string) (*api.StringsResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if language == f.failLang {
		return nil, &api.TransportError{URI: "http://x", Err: errors.New("timeout")}
	}
	return &api.StringsResponse{
		Language: language,
		Civ:      []api.StringEntry{{ID: 1, String: "Britons/" + language}},
	}, nil
}

func newPreloader(src ReferenceSource, strings StringsSource, store *refdata.Store, cache *lang.Cache) *Preloader {
	return New(src, strings, store, cache, "aoe2de", time.Minute, zerolog.Nop())
}

func TestRefreshOnce(t *testing.T) {
	src := &fakeRefSource{
		players: []domain.Player{
			{Name: "TheViper", PlatformIDs: map[string][]string{"rl": {"196240"}}},
		},
		teams:     []domain.Team{{Name: "GamerLegion"}},
		platforms: []domain.Platform{{ID: "de", Name: "Definitive Edition"}},
	}
	store := refdata.NewStore("rl", zerolog.Nop())
	cache := lang.NewCache("en")

	p := newPreloader(src, &fakeStringsSource{}, store, cache)
	if err := p.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce failed: %v", err)
	}

	if _, ok := store.LookupAlias("196240"); !ok {
		t.Error("refresh must rebuild the identifier index")
	}
	if len(store.Teams()) != 1 || len(store.Platforms()) != 1 {
		t.Error("refresh must replace teams and platforms")
	}

	if got := len(cache.Languages()); got != len(lang.Supported) {
		t.Errorf("want %d cached languages, got %d", len(lang.Supported), got)
	}
	if s, err := cache.Resolve("de", lang.CategoryCiv, 1); err != nil || s != "Britons/de" {
		t.Errorf("per-language table not stored: %q %v", s, err)
	}
}

func TestRefreshOnce_ReferenceFailureAbandonsTick(t *testing.T) {
	src := &fakeRefSource{
		players:  []domain.Player{{Name: "New"}},
		teamsErr: &api.TransportError{URI: "http://x", Err: errors.New("connect refused")},
	}
	store := refdata.NewStore("rl", zerolog.Nop())
	store.ReplaceSnapshot([]domain.Player{
		{Name: "Old", PlatformIDs: map[string][]string{"rl": {"1"}}},
	}, nil, nil)
	strings := &fakeStringsSource{}

	p := newPreloader(src, strings, store, lang.NewCache("en"))
	err := p.RefreshOnce(context.Background())
	var tErr *api.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("want transport error from abandoned tick, got %v", err)
	}

	// Stale snapshot remains authoritative, and the tick stops before the
	// language phase.
	if p2, ok := store.LookupAlias("1"); !ok || p2.Name != "Old" {
		t.Error("failed refresh must leave the previous snapshot in place")
	}
	if strings.calls != 0 {
		t.Errorf("language phase must not run after a reference failure, got %d calls", strings.calls)
	}
}

func TestRefreshOnce_LanguageFailureIsPerLanguage(t *testing.T) {
	src := &fakeRefSource{players: []domain.Player{{Name: "X"}}}
	cache := lang.NewCache("en")

	p := newPreloader(src, &fakeStringsSource{failLang: "fr"}, refdata.NewStore("rl", zerolog.Nop()), cache)
	if err := p.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("a language fetch failure must not fail the tick: %v", err)
	}

	if _, ok := cache.Table("fr"); ok {
		t.Error("failed language must stay uncached")
	}
	if _, ok := cache.Table("en"); !ok {
		t.Error("other languages must still be cached")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &fakeRefSource{players: []domain.Player{{Name: "X"}}}
	p := newPreloader(src, &fakeStringsSource{}, refdata.NewStore("rl", zerolog.Nop()), lang.NewCache("en"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
