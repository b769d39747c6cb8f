package scheduler

import (
	"context"
	"time"

	"github.com/coachware/commission/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.sweeper",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			BatchSize:      cfg.Sweep.BatchSize,
			PollInterval:   time.Duration(cfg.Sweep.IntervalSeconds) * time.Second,
			PaymentTimeout: time.Duration(cfg.Sweep.TimeoutSeconds) * time.Second,
		}
	}),
	fx.Provide(NewSweeper),
	fx.Invoke(runSweeper),
)

func runSweeper(lc fx.Lifecycle, sweeper *Sweeper, cfg config.Config) {
	if !cfg.Sweep.Enabled {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sweeper.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
