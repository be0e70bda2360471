package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staybook/internal/adapters/catalog"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/shared"
	mysqlrepo "staybook/internal/storage/mysql"
)

// Precomputes rate calendars for the configured properties so the first
// front-end hit after a deploy is served from cache.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.WarmWorkers).
		Int("properties", len(cfg.WarmProperties)).
		Msg("warmer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	gateway, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}

	rates := app.NewRateAggregator(gateway, cfg.SubqueryTO)
	pricing := app.NewPricingComposer(rates, store, cfg.SubqueryTO)
	matcher := app.NewAvailabilityMatcher(gateway, cfg.SubqueryTO)
	promos := app.NewPromotionEngine(gateway, store, app.NewRuleRegistry(), cfg.SubqueryTO)
	q := app.NewQueryService(matcher, rates, promos, pricing, store, cache, cfg.CacheTTL)

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for _, id := range cfg.WarmProperties {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(propertyID int64) {
			defer wg.Done()
			defer sem.Release(1)

			cal, err := q.RateCalendar(ctx, propertyID)
			if err != nil {
				log.Warn().Int64("id", propertyID).Err(err).Msg("warm failed")
				return
			}
			if cal.Degraded {
				log.Warn().Int64("id", propertyID).Err(cal.Cause).Msg("warm degraded, not cached")
				return
			}
			log.Info().Int64("id", propertyID).Int("days", len(cal.Value)).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("warmup completed")
}
