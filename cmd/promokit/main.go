package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/clock"
	"github.com/marketmint/promokit/internal/config"
	"github.com/marketmint/promokit/internal/migration"
	"github.com/marketmint/promokit/internal/observability"
	"github.com/marketmint/promokit/internal/server"
	"github.com/marketmint/promokit/pkg/db"
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

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
