package preload

import (
	"context"
	"time"

	"aoe2-overlay/internal/api"
	"aoe2-overlay/internal/constants"
	"aoe2-overlay/internal/domain"
	"aoe2-overlay/internal/lang"
	"aoe2-overlay/internal/refdata"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ReferenceSource fetches the three static reference-data files.
type ReferenceSource interface {
	FetchPlayers(ctx context.Context) ([]domain.Player, error)
	FetchTeams(ctx context.Context) ([]domain.Team, error)
	FetchPlatforms(ctx context.Context) ([]domain.Platform, error)
}

// StringsSource fetches localized string tables from the stats API.
type StringsSource interface {
	Strings(ctx context.Context, game, language string) (*api.StringsResponse, error)
}

// Preloader drives the periodic refresh of the reference snapshot and the
// language-string cache. It is the only writer of either; request serving
// reads the last-known-good state throughout.
type Preloader struct {
	source   ReferenceSource
	strings  StringsSource
	store    *refdata.Store
	cache    *lang.Cache
	game     string
	interval time.Duration
	logger   zerolog.Logger
}

func New(source ReferenceSource, strings StringsSource, store *refdata.Store, cache *lang.Cache, game string, interval time.Duration, logger zerolog.Logger) *Preloader {
	return &Preloader{
		source:   source,
		strings:  strings,
		store:    store,
		cache:    cache,
		game:     game,
		interval: interval,
		logger:   logger,
	}
}

// Run refreshes once immediately, then on a fixed interval measured from
// completion of the prior tick, so slow refreshes never overlap. Returns
// when ctx is cancelled.
func (p *Preloader) Run(ctx context.Context) {
	for {
		if err := p.RefreshOnce(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("refresh tick abandoned, previous snapshot stays authoritative")
		}
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("preloader stopped")
			return
		case <-time.After(p.interval):
		}
	}
}

// RefreshOnce fetches all reference files, swaps the snapshot, then
// refreshes the language tables. Any reference-phase failure aborts the
// tick before the swap; language failures only skip that language.
func (p *Preloader) RefreshOnce(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, constants.RefDataTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(fetchCtx)
	var (
		players   []domain.Player
		teams     []domain.Team
		platforms []domain.Platform
	)
	g.Go(func() error {
		var err error
		players, err = p.source.FetchPlayers(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = p.source.FetchTeams(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		platforms, err = p.source.FetchPlatforms(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	p.store.ReplaceSnapshot(players, teams, platforms)

	p.refreshLanguages(ctx)
	return nil
}

func (p *Preloader) refreshLanguages(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.LanguageFetchLimit)

	for _, code := range lang.Supported {
		g.Go(func() error {
			langCtx, cancel := context.WithTimeout(gCtx, constants.ExternalAPITimeout)
			defer cancel()

			resp, err := p.strings.Strings(langCtx, p.game, code)
			if err != nil {
				p.logger.Warn().Err(err).Str("language", code).Msg("language strings fetch failed, keeping cached table")
				return nil
			}
			p.cache.Store(code, lang.NewTable(resp))
			return nil
		})
	}
	g.Wait()

	p.logger.Info().Strs("languages", p.cache.Languages()).Msg("language cache refreshed")
}
