package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

const (
	EventJobSaved      = "job.saved"
	DefaultJobChannel  = "bmu-jobs"
	defaultDialTimeout = 5 * time.Second
)

// JobEvent is the wire message published for every saved job.
type JobEvent struct {
	Type string     `json:"type"`
	Job  *types.Job `json:"job"`
}

type JobBus interface {
	PublishJobSaved(ctx context.Context, job *types.Job) error
	Subscribe(ctx context.Context, onEvent func(JobEvent)) error
	Close() error
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type jobBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewJobBus(log *logger.Logger, opts Options) (JobBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(opts.Channel)
	if ch == "" {
		ch = DefaultJobChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: defaultDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &jobBus{
		log:     log.With("service", "RedisJobBus", "channel", ch),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func EncodeJobSaved(job *types.Job) ([]byte, error) {
	return json.Marshal(JobEvent{Type: EventJobSaved, Job: job})
}

func DecodeJobEvent(raw []byte) (JobEvent, error) {
	var ev JobEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return JobEvent{}, err
	}
	return ev, nil
}

func (b *jobBus) PublishJobSaved(ctx context.Context, job *types.Job) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis job bus not initialized")
	}
	raw, err := EncodeJobSaved(job)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Subscribe blocks, delivering events until ctx is cancelled.
func (b *jobBus) Subscribe(ctx context.Context, onEvent func(JobEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis job bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := DecodeJobEvent([]byte(msg.Payload))
			if err != nil {
				b.log.Warn("dropping undecodable job event", "error", err)
				continue
			}
			onEvent(ev)
		}
	}
}

func (b *jobBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
