package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisbus "github.com/yungbote/bmu-faultfinder/internal/clients/redis"
	types "github.com/yungbote/bmu-faultfinder/internal/domain"
)

type fakeJobBus struct {
	published []*types.Job
	err       error
}

func (b *fakeJobBus) PublishJobSaved(_ context.Context, job *types.Job) error {
	b.published = append(b.published, job)
	return b.err
}

func (b *fakeJobBus) Subscribe(context.Context, func(redisbus.JobEvent)) error { return nil }
func (b *fakeJobBus) Close() error                                             { return nil }

func TestRedisJobNotifierPublishesSavedJobs(t *testing.T) {
	bus := &fakeJobBus{}
	svc := newJobLog(t, NewRedisJobNotifier(bus))

	saved, err := svc.Save(context.Background(), types.JobInput{Site: "Harbor Tower", ModelID: "alimak-a2"})
	require.NoError(t, err)

	require.Len(t, bus.published, 1)
	assert.Equal(t, saved.ID, bus.published[0].ID)
	require.NotNil(t, bus.published[0].Model)
	assert.Equal(t, "alimak-a2", bus.published[0].Model.ID)
}

func TestRedisJobNotifierPassesBusErrors(t *testing.T) {
	bus := &fakeJobBus{err: errors.New("connection refused")}
	n := NewRedisJobNotifier(bus)
	assert.EqualError(t, n.JobSaved(context.Background(), &types.Job{ID: "job-1"}), "connection refused")
}
