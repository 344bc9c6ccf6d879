package cmd

import (
	"context"
	"net/http"

	"github.com/chrisdamba/whattoeat/internal/catalog"
	"github.com/chrisdamba/whattoeat/internal/events"
	"github.com/chrisdamba/whattoeat/internal/factories"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/places"
	"github.com/chrisdamba/whattoeat/internal/recommend"
	"github.com/chrisdamba/whattoeat/internal/repositories"
	"github.com/chrisdamba/whattoeat/internal/repositories/memory"
	"github.com/chrisdamba/whattoeat/internal/repositories/postgres"
	"github.com/chrisdamba/whattoeat/internal/service"
	"github.com/chrisdamba/whattoeat/internal/wheel"
	"github.com/rs/zerolog/log"
)

type stores struct {
	preferences repositories.PreferenceRepository
	spins       repositories.SpinRepository
	close       func()
}

func openStores(ctx context.Context, cfg *models.Config) (*stores, error) {
	switch cfg.Storage {
	case models.StoragePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("Using postgres storage")
		return &stores{
			preferences: postgres.NewPreferenceRepository(pool),
			spins:       postgres.NewSpinRepository(pool),
			close:       pool.Close,
		}, nil
	default:
		return &stores{
			preferences: memory.NewPreferenceStore(),
			spins:       memory.NewSpinStore(),
			close:       func() {},
		}, nil
	}
}

// buildService wires the wheel service from cfg. The returned func
// releases storage and the event sink.
func buildService(ctx context.Context, cfg *models.Config) (*service.WheelService, func(), error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	dest, err := events.NewDestination(cfg)
	if err != nil {
		st.close()
		return nil, nil, err
	}
	publisher := events.NewPublisher(dest)

	var searcher places.Searcher
	if cfg.PlacesAPIKey != "" {
		searcher = places.NewClient(cfg, nil)
	} else {
		log.Warn().Msg("No places API key configured, restaurant results will be samples")
	}

	var upstream recommend.Recommender
	if cfg.RecommendationURL != "" {
		upstream = recommend.NewClient(cfg.RecommendationURL, &http.Client{})
	}

	seed := seedFor(cfg)
	svc := service.New(service.Deps{
		Config:      cfg,
		Catalog:     cat,
		Spinner:     wheel.NewSpinner(seed, wheel.Geometry{PointerDegrees: cfg.PointerDegrees}),
		Places:      searcher,
		Recommender: recommend.NewWithFallback(upstream, cat, cfg.RecommendationTimeout),
		Samples:     factories.NewRestaurantFactory(seed),
		Preferences: st.preferences,
		Spins:       st.spins,
		Publisher:   publisher,
	})

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing event destination")
		}
		st.close()
	}
	return svc, cleanup, nil
}
