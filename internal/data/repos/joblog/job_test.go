package joblog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bmu-faultfinder/internal/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/data/repos/testutil"
	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/pkg/dbctx"
)

func repoImpls(t *testing.T) map[string]JobRepo {
	return map[string]JobRepo{
		"memory": NewMemoryJobRepo(),
		"gorm":   NewJobRepo(testutil.DB(t), testutil.Logger(t)),
	}
}

func TestJobRepoRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 30, 15, 123456000, time.UTC)
	for name, repo := range repoImpls(t) {
		t.Run(name, func(t *testing.T) {
			dbc := dbctx.Context{Ctx: context.Background()}
			in := testutil.NewJob(1, base)

			created, err := repo.Create(dbc, in)
			require.NoError(t, err)
			assert.Equal(t, in.ID, created.ID)

			got, err := repo.GetByID(dbc, in.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, in.Site, got.Site)
			assert.Equal(t, in.BmuID, got.BmuID)
			assert.Equal(t, in.ModelID, got.ModelID)
			assert.Equal(t, in.Date, got.Date)
			assert.Equal(t, in.Reported, got.Reported)
			assert.Equal(t, []string(in.Checks), []string(got.Checks))
			assert.Equal(t, in.Diagnosis, got.Diagnosis)
			assert.Equal(t, in.Parts, got.Parts)
			assert.True(t, in.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", in.CreatedAt, got.CreatedAt)
			assert.Nil(t, got.Model)
		})
	}
}

func TestJobRepoListNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for name, repo := range repoImpls(t) {
		t.Run(name, func(t *testing.T) {
			dbc := dbctx.Context{Ctx: context.Background()}
			for i := 1; i <= 3; i++ {
				_, err := repo.Create(dbc, testutil.NewJob(i, base.Add(time.Duration(i)*time.Minute)))
				require.NoError(t, err)
			}
			list, err := repo.List(dbc)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, "job-test-0003", list[0].ID)
			assert.Equal(t, "job-test-0001", list[2].ID)
		})
	}
}

func TestJobRepoEmptyAndMissing(t *testing.T) {
	for name, repo := range repoImpls(t) {
		t.Run(name, func(t *testing.T) {
			dbc := dbctx.Context{Ctx: context.Background()}
			list, err := repo.List(dbc)
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Empty(t, list)

			got, err := repo.GetByID(dbc, "job-nope")
			require.NoError(t, err)
			assert.Nil(t, got)

			created, err := repo.Create(dbc, &types.Job{ID: "job-empty", CreatedAt: time.Now().UTC()})
			require.NoError(t, err)
			assert.NotNil(t, created.Checks)
			got, err = repo.GetByID(dbc, "job-empty")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Empty(t, got.Checks)
		})
	}
}

func TestJobRepoHonoursTransaction(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewJobRepo(gdb, testutil.Logger(t))
	tx := testutil.Tx(t, gdb)

	_, err := repo.Create(dbctx.Context{Ctx: context.Background(), Tx: tx}, testutil.NewJob(9, time.Now()))
	require.NoError(t, err)
	got, err := repo.GetByID(dbctx.Context{Ctx: context.Background(), Tx: tx}, "job-test-0009")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryRepoDoesNotShareRows(t *testing.T) {
	repo := NewMemoryJobRepo()
	dbc := dbctx.Context{Ctx: context.Background()}
	in := testutil.NewJob(1, time.Now())
	_, err := repo.Create(dbc, in)
	require.NoError(t, err)

	in.Site = "mutated"
	in.Checks[0] = "mutated"
	got, _ := repo.GetByID(dbc, in.ID)
	m, _ := catalogModel(t)
	got.Model = &m

	again, _ := repo.GetByID(dbc, in.ID)
	assert.Equal(t, "Harbor Tower", again.Site)
	assert.Equal(t, "24V present", again.Checks[0])
	assert.Nil(t, again.Model)
}

func TestMemoryRepoConcurrentCreate(t *testing.T) {
	repo := NewMemoryJobRepo()
	dbc := dbctx.Context{Ctx: context.Background()}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = repo.Create(dbc, testutil.NewJob(n, time.Now()))
		}(i)
	}
	wg.Wait()
	list, err := repo.List(dbc)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func catalogModel(t *testing.T) (types.Model, bool) {
	t.Helper()
	s, err := catalog.Default()
	require.NoError(t, err)
	return s.Model("alimak-a1")
}
