package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mercado/internal/clock"
	"github.com/smallbiznis/mercado/internal/config"
	"github.com/smallbiznis/mercado/internal/logger"
	"github.com/smallbiznis/mercado/internal/migration"
	"github.com/smallbiznis/mercado/internal/server"
	"github.com/smallbiznis/mercado/pkg/db"
	"github.com/smallbiznis/mercado/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		telemetry.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
