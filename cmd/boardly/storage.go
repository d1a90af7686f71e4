package main

import (
	"context"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository/sqlite"
	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/persistence"
	"github.com/dongwonkwak/boardly-sub001/internal/user"
)

// Repositories groups the stores that share the database pool.
type Repositories struct {
	Board    *sqlite.Repository
	User     user.Store
	Activity activity.Store
}

func provideRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repositories, []func() error, error) {
	cleanups := make([]func() error, 0, 2)
	pool, cleanup, err := persistence.Provide(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, cleanup)

	boardRepo, cleanup, err := sqlite.Provide(pool.Writer(), pool.Reader())
	if err != nil {
		return nil, cleanups, err
	}
	cleanups = append(cleanups, cleanup)

	userStore, err := user.Provide(pool.Writer(), pool.Reader())
	if err != nil {
		return nil, cleanups, err
	}
	if err := user.Seed(ctx, userStore, cfg.Seed.UsersFile, log); err != nil {
		return nil, cleanups, err
	}

	activityStore, err := activity.Provide(pool.Writer(), pool.Reader())
	if err != nil {
		return nil, cleanups, err
	}

	return &Repositories{
		Board:    boardRepo,
		User:     userStore,
		Activity: activityStore,
	}, cleanups, nil
}
