package main

import (
	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

func provideEventBus(cfg *config.Config, log *logger.Logger) (bus.EventBus, func() error, error) {
	provider, cleanup, err := events.Provide(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return provider.Bus, cleanup, nil
}
