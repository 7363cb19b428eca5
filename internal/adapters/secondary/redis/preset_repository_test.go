package redis_test

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	presetredis "github.com/lorrc/repair-desk/internal/adapters/secondary/redis"
	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var redisAddr string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("skipping redis integration tests in short mode")
		os.Exit(m.Run())
	}
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Printf("could not start redis container: %v", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("could not terminate redis container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Printf("could not get redis host: %v", err)
		return 1
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		log.Printf("could not get redis port: %v", err)
		return 1
	}
	redisAddr = fmt.Sprintf("%s:%s", host, port.Port())

	return m.Run()
}

func newRepo(t *testing.T, opts ...presetredis.Option) *presetredis.PresetRepository {
	t.Helper()
	if redisAddr == "" {
		t.Skip("redis container not started")
	}
	opts = append([]presetredis.Option{
		presetredis.WithAddress(redisAddr),
		presetredis.WithKey("test:" + t.Name()),
	}, opts...)
	repo, err := presetredis.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.DeleteAll(context.Background())
		_ = repo.Close()
	})
	return repo
}

func TestPresetRepository_SaveListRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	preset := domain.FilterPreset{
		Name: "Q1 Ops",
		Filter: domain.ReportFilter{
			Range: domain.DateRange{
				Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			},
			Department: "Ops",
			Status:     domain.StatusCompleted,
		},
		CreatedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, preset))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, preset.Name, got[0].Name)
	assert.Equal(t, preset.Filter, got[0].Filter)
	assert.True(t, preset.CreatedAt.Equal(got[0].CreatedAt))
}

func TestPresetRepository_RangeSurvivesNonUTCZone(t *testing.T) {
	ctx := context.Background()
	bangkok := time.FixedZone("ICT", 7*60*60)
	repo := newRepo(t, presetredis.WithLocation(bangkok))

	saved := domain.DateRange{
		Start: time.Date(2024, 1, 15, 0, 0, 0, 0, bangkok),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, bangkok),
	}
	require.NoError(t, repo.Save(ctx, domain.FilterPreset{Name: "late jan", Filter: domain.ReportFilter{Range: saved}}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	loaded := got[0].Filter.Range
	assert.Equal(t, "2024-01-15", loaded.Start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-31", loaded.End.Format("2006-01-02"))
	assert.True(t, saved.Start.Equal(loaded.Start))
	assert.True(t, loaded.Contains(time.Date(2024, 1, 31, 10, 0, 0, 0, bangkok)))
}

func TestPresetRepository_SaveReplacesSameName(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Save(ctx, domain.FilterPreset{Name: "p", Filter: domain.ReportFilter{Month: "2024-01"}}))
	require.NoError(t, repo.Save(ctx, domain.FilterPreset{Name: "p", Filter: domain.ReportFilter{Month: "2024-02"}}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02", got[0].Filter.Month)
}

func TestPresetRepository_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Save(ctx, domain.FilterPreset{Name: "a"}))
	require.NoError(t, repo.Save(ctx, domain.FilterPreset{Name: "b"}))

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), apperrors.ErrPresetNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, repo.Ping(ctx))
}
