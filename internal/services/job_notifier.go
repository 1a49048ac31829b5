package services

import (
	"context"

	redisbus "github.com/yungbote/bmu-faultfinder/internal/clients/redis"
	types "github.com/yungbote/bmu-faultfinder/internal/domain"
)

// JobNotifier announces saved jobs to other processes.
type JobNotifier interface {
	JobSaved(ctx context.Context, job *types.Job) error
}

type redisJobNotifier struct {
	bus redisbus.JobBus
}

func NewRedisJobNotifier(bus redisbus.JobBus) JobNotifier {
	return &redisJobNotifier{bus: bus}
}

func (n *redisJobNotifier) JobSaved(ctx context.Context, job *types.Job) error {
	return n.bus.PublishJobSaved(ctx, job)
}
