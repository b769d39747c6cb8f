package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coachware/commission/internal/clock"
	"github.com/coachware/commission/internal/commission"
	"github.com/coachware/commission/internal/config"
	"github.com/coachware/commission/internal/events"
	"github.com/coachware/commission/internal/migration"
	"github.com/coachware/commission/internal/observability/logger"
	"github.com/coachware/commission/internal/scheduler"
	"github.com/coachware/commission/internal/seed"
	"github.com/coachware/commission/internal/server"
	"github.com/coachware/commission/internal/settings"
	"github.com/coachware/commission/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		fx.Invoke(func(cfg config.Config, conn *gorm.DB, node *snowflake.Node) error {
			if cfg.IsProduction() || !cfg.SeedDemoData {
				return nil
			}
			return seed.EnsureDemoData(conn, node)
		}),
		clock.Module,
		fx.Provide(events.NewOutbox),
		settings.Module,
		commission.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
