package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/policy"
	boardservice "github.com/dongwonkwak/boardly-sub001/internal/board/service"
	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
	"github.com/dongwonkwak/boardly-sub001/internal/user/namecache"
)

// Services holds the long-lived application services.
type Services struct {
	Board *boardservice.Service
	Sink  *activity.Sink
}

func provideServices(ctx context.Context, cfg *config.Config, log *logger.Logger, repos *Repositories, eventBus bus.EventBus) (*Services, []func() error, error) {
	var cleanups []func() error

	names, cleanup, err := provideNameLookup(ctx, cfg, log, repos)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, cleanup)

	sink := activity.NewSink(repos.Activity, eventBus, log)
	if err := sink.Start(); err != nil {
		return nil, cleanups, err
	}
	cleanups = append(cleanups, sink.Stop)

	listPolicy, cardPolicy := policy.FromConfig(cfg.Policy)
	boardSvc := boardservice.NewService(
		repos.Board,
		repos.User,
		names,
		activity.NewRecorder(eventBus),
		log,
		boardservice.Options{ListPolicy: listPolicy, CardPolicy: cardPolicy},
	)
	boardSvc.SetActivityFeed(repos.Activity)
	log.Info("Board Service initialized",
		zap.Int("max_lists_per_board", listPolicy.MaxLists),
		zap.Int("max_cards_per_list", cardPolicy.MaxCardsPerList))

	return &Services{Board: boardSvc, Sink: sink}, cleanups, nil
}

// provideNameLookup connects the redis name cache when configured and falls back to
// uncached lookups otherwise.
func provideNameLookup(ctx context.Context, cfg *config.Config, log *logger.Logger, repos *Repositories) (*namecache.Lookup, func() error, error) {
	if cfg.Redis.URL == "" {
		log.Info("Name cache disabled (no redis url)")
		return namecache.New(repos.User, repos.Board, nil, 0, log), func() error { return nil }, nil
	}
	client, err := namecache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize name cache: %w", err)
	}
	log.Info("Connected to redis name cache")
	return namecache.New(repos.User, repos.Board, client, cfg.Redis.NameTTLDuration(), log), client.Close, nil
}
