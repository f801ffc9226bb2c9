package repo

import (
	"euchre-service/internal/config"
	"euchre-service/pkg/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NC stays nil when nats.url is not configured.
var NC *nats.Conn

func InitNATS() {
	conf := config.GlobalConfig.NATS
	if conf.URL == "" {
		logger.Log.Info("NATS relay disabled")
		return
	}
	var err error
	NC, err = nats.Connect(conf.URL,
		nats.Name("euchre-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		logger.Log.Fatal("Failed to connect to NATS", zap.String("url", conf.URL), zap.Error(err))
	}
}

func CloseNATS() {
	if NC != nil {
		NC.Drain()
	}
}
