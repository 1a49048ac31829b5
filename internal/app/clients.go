package app

import (
	"github.com/yungbote/bmu-faultfinder/internal/clients/redis"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

type Clients struct {
	JobBus redis.JobBus
}

// wireClients connects optional integrations. An unreachable redis is logged
// and skipped; jobs still save without events.
func wireClients(cfg Config, log *logger.Logger) Clients {
	var out Clients
	if cfg.RedisAddr == "" {
		return out
	}
	bus, err := redis.NewJobBus(log, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.RedisJobChannel,
	})
	if err != nil {
		log.Warn("Redis job bus unavailable, job events disabled", "error", err)
		return out
	}
	out.JobBus = bus
	return out
}

func (c Clients) Close() {
	if c.JobBus != nil {
		_ = c.JobBus.Close()
	}
}
