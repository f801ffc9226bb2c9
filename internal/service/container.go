package service

import (
	"context"
	"time"

	"euchre-service/internal/config"
	"euchre-service/internal/service/game"
	"euchre-service/internal/service/player"
	"euchre-service/internal/service/table"
	"euchre-service/pkg/cache"
	"euchre-service/pkg/logger"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Container struct {
	Player *player.Service
	Table  *table.Service
	Game   *game.Service

	cache *cache.Cache
}

// NewContainer wires the services. rdb and nc may be nil.
func NewContainer(db *gorm.DB, rdb *redis.Client, nc *nats.Conn) *Container {
	conf := config.GlobalConfig

	c, err := cache.New(conf.Cache.MaxCost, time.Duration(conf.Cache.TTLSeconds)*time.Second)
	if err != nil {
		logger.Log.Warn("local cache disabled", zap.Error(err))
		c = nil
	}

	tables := table.NewService(db, rdb,
		table.WithWinningScore(conf.Game.WinningScore),
		table.WithPresenceTTL(time.Duration(conf.Game.PresenceTTLSeconds)*time.Second),
	)

	var gameOpts []game.Option
	if nc != nil {
		gameOpts = append(gameOpts, game.WithPublisher(nc, conf.NATS.Subject))
	}

	return &Container{
		Player: player.NewService(db, c),
		Table:  tables,
		Game:   game.NewService(db, tables, gameOpts...),
		cache:  c,
	}
}

func (c *Container) Start(ctx context.Context) error {
	return c.Table.Start(ctx)
}

// Close flushes pending game records and releases local resources.
func (c *Container) Close() {
	c.Game.Close()
	if c.cache != nil {
		c.cache.Close()
	}
}
