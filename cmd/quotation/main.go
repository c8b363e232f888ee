package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotation/internal/clock"
	"github.com/smallbiznis/quotation/internal/config"
	"github.com/smallbiznis/quotation/internal/logger"
	"github.com/smallbiznis/quotation/internal/migration"
	"github.com/smallbiznis/quotation/internal/observability"
	"github.com/smallbiznis/quotation/internal/server"
	"github.com/smallbiznis/quotation/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
