package statssvc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"bookmarket/model"
	statsrepo "bookmarket/repository/stats"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStats struct {
	statsrepo.Repo
	platformCalls int
	platformFn    func(ctx context.Context) (*model.PlatformStats, error)
}

func (m *mockStats) Platform(ctx context.Context) (*model.PlatformStats, error) {
	m.platformCalls++
	return m.platformFn(ctx)
}

func (m *mockStats) ActivityChart(context.Context) ([]model.ActivityPoint, error) {
	return []model.ActivityPoint{{Day: "Mon", Value: 4}}, nil
}

func (m *mockStats) TopBooks(_ context.Context, limit int) ([]model.TopBook, error) {
	return []model.TopBook{{ID: 1, Title: "Oromay", RentalCount: 9}}, nil
}

func (m *mockStats) TopCategories(_ context.Context, limit int) ([]model.TopCategory, error) {
	return []model.TopCategory{{ID: 2, Name: "Fiction", BookCount: 12, RentalCount: 30}}, nil
}

func (m *mockStats) TopOwners(_ context.Context, limit int) ([]model.TopOwner, error) {
	return []model.TopOwner{{ID: 5, TotalRevenue: 120}}, nil
}

func (m *mockStats) TopUsers(_ context.Context, limit int) ([]model.TopUser, error) {
	return []model.TopUser{{ID: 1, RentalCount: 7}}, nil
}

func (m *mockStats) RecentActivity(_ context.Context, limit int) ([]model.ActivityEntry, error) {
	return []model.ActivityEntry{{Type: "rental", RentalID: 3}}, nil
}

var (
	admin  = model.Actor{UserID: 9, Role: model.RoleAdmin}
	reader = model.Actor{UserID: 1, Role: model.RoleUser}

	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func fixedStats() *model.PlatformStats {
	return &model.PlatformStats{TotalUsers: 100, TotalRentals: 40, ActiveRentals: 12}
}

func TestPlatform_AdminOnly(t *testing.T) {
	svc := New(&mockStats{}, nil, time.Minute, discard)

	_, err := svc.Platform(context.Background(), reader)
	assert.Equal(t, ErrForbidden, Code(err))
}

func TestPlatform_CacheMissThenHit(t *testing.T) {
	repo := &mockStats{
		platformFn: func(context.Context) (*model.PlatformStats, error) { return fixedStats(), nil },
	}
	cache, mock := redismock.NewClientMock()
	raw, err := json.Marshal(fixedStats())
	require.NoError(t, err)

	mock.ExpectGet(platformKey).RedisNil()
	mock.ExpectSet(platformKey, raw, time.Minute).SetVal("OK")
	mock.ExpectGet(platformKey).SetVal(string(raw))

	svc := New(repo, cache, time.Minute, discard)

	out, err := svc.Platform(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.TotalUsers)
	assert.Equal(t, 1, repo.platformCalls)

	out, err = svc.Platform(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.TotalUsers)
	assert.Equal(t, 1, repo.platformCalls, "second read served from cache")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_BundlesAllSections(t *testing.T) {
	repo := &mockStats{
		platformFn: func(context.Context) (*model.PlatformStats, error) { return fixedStats(), nil },
	}
	svc := New(repo, nil, time.Minute, discard)

	d, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(100), d.Stats.TotalUsers)
	assert.Len(t, d.ActivityChart, 1)
	assert.Len(t, d.TopBooks, 1)
	require.Len(t, d.TopCategories, 1)
	assert.Equal(t, "Fiction", d.TopCategories[0].Name)
	assert.Len(t, d.TopOwners, 1)
	assert.Len(t, d.TopUsers, 1)
	assert.Len(t, d.RecentActivity, 1)

	_, err = svc.Dashboard(context.Background(), reader)
	assert.Equal(t, ErrForbidden, Code(err))
}

func TestPlatform_NoCacheFallsThrough(t *testing.T) {
	repo := &mockStats{
		platformFn: func(context.Context) (*model.PlatformStats, error) { return fixedStats(), nil },
	}
	svc := New(repo, nil, time.Minute, discard)

	for i := 0; i < 2; i++ {
		_, err := svc.Platform(context.Background(), admin)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.platformCalls, "without Redis every read hits the database")
}
