package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/siftbridge/internal/account"
	"github.com/smallbiznis/siftbridge/internal/cart"
	"github.com/smallbiznis/siftbridge/internal/catalog"
	"github.com/smallbiznis/siftbridge/internal/config"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/identity"
	"github.com/smallbiznis/siftbridge/internal/logger"
	"github.com/smallbiznis/siftbridge/internal/migration"
	"github.com/smallbiznis/siftbridge/internal/notifier"
	"github.com/smallbiznis/siftbridge/internal/observability/metrics"
	"github.com/smallbiznis/siftbridge/internal/server"
	"github.com/smallbiznis/siftbridge/internal/session"
	"github.com/smallbiznis/siftbridge/internal/settings"
	"github.com/smallbiznis/siftbridge/internal/snippet"
	"github.com/smallbiznis/siftbridge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		metrics.Module,

		events.Module,
		session.Module,
		settings.Module,
		account.Module,
		identity.Module,
		catalog.Module,
		cart.Module,

		notifier.Module,
		snippet.Module,
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
