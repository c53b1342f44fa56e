package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/clock"
	"github.com/sellside/closedesk/internal/config"
	"github.com/sellside/closedesk/internal/migration"
	"github.com/sellside/closedesk/internal/observability"
	"github.com/sellside/closedesk/internal/server"
	"github.com/sellside/closedesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
