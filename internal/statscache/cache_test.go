package statscache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/provider"
)

// MockGameStatRepository mocks the game stat repository
type MockGameStatRepository struct {
	mock.Mock
}

func (m *MockGameStatRepository) Upsert(ctx context.Context, row *models.GameStatRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockGameStatRepository) ListByPlayerSeason(ctx context.Context, playerID uuid.UUID, season string) ([]*models.GameStatRow, error) {
	args := m.Called(ctx, playerID, season)
	return args.Get(0).([]*models.GameStatRow), args.Error(1)
}

func (m *MockGameStatRepository) GetByPlayerAndDateRange(ctx context.Context, playerID uuid.UUID, from, to time.Time) (*models.GameStatRow, error) {
	args := m.Called(ctx, playerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameStatRow), args.Error(1)
}

func (m *MockGameStatRepository) CountByPlayer(ctx context.Context, playerID uuid.UUID) (int, error) {
	args := m.Called(ctx, playerID)
	return args.Int(0), args.Error(1)
}

func (m *MockGameStatRepository) LastFetchedAt(ctx context.Context, playerID uuid.UUID, season string) (*time.Time, error) {
	args := m.Called(ctx, playerID, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockStatsProvider mocks the stats feed
type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) FetchGameLog(ctx context.Context, playerExternalID int64, season string) ([]provider.GameLogRow, error) {
	args := m.Called(ctx, playerExternalID, season)
	return args.Get(0).([]provider.GameLogRow), args.Error(1)
}

func (m *MockStatsProvider) FetchPlayerIndex(ctx context.Context, season string) ([]provider.PlayerIndexEntry, error) {
	args := m.Called(ctx, season)
	return args.Get(0).([]provider.PlayerIndexEntry), args.Error(1)
}

func (m *MockStatsProvider) Name() string {
	return "mock_stats"
}

func floatPtr(v float64) *float64 { return &v }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func statRow(points *float64) *models.GameStatRow {
	return &models.GameStatRow{ID: uuid.New(), Points: points}
}

func TestAveragesExcludesNulls(t *testing.T) {
	stats := &MockGameStatRepository{}
	player := &models.Player{ID: uuid.New(), FullName: "Test Player"}

	// Three games; the nil row means a DNP and stays out of the sample
	stats.On("ListByPlayerSeason", mock.Anything, player.ID, "2025-26").Return([]*models.GameStatRow{
		statRow(floatPtr(20)),
		statRow(nil),
		statRow(floatPtr(30)),
	}, nil)

	cache := New(stats, &MockStatsProvider{}, "2025-26", 12*time.Hour, quietLogger())
	result, err := cache.Averages(context.Background(), player, Season)
	require.NoError(t, err)

	summary := result.Summary(models.StatPoints)
	assert.InDelta(t, 25.0, summary.Mean, 1e-9)
	assert.InDelta(t, 5.0, summary.StdDev, 1e-9, "population std dev of {20, 30}")
	assert.Equal(t, 2, summary.Games)
	assert.Equal(t, 3, result.Games, "total rows include the DNP")
}

func TestAveragesTrailingWindowTrimsNewestFirst(t *testing.T) {
	stats := &MockGameStatRepository{}
	player := &models.Player{ID: uuid.New()}

	// Rows arrive newest first
	stats.On("ListByPlayerSeason", mock.Anything, player.ID, "2025-26").Return([]*models.GameStatRow{
		statRow(floatPtr(40)),
		statRow(floatPtr(20)),
		statRow(floatPtr(10)),
		statRow(floatPtr(10)),
	}, nil)

	cache := New(stats, &MockStatsProvider{}, "2025-26", 12*time.Hour, quietLogger())
	result, err := cache.Averages(context.Background(), player, Trailing(2))
	require.NoError(t, err)

	assert.InDelta(t, 30.0, result.Summary(models.StatPoints).Mean, 1e-9)
	assert.Equal(t, 2, result.Games)
}

func TestAveragesMemoizesWithinRun(t *testing.T) {
	stats := &MockGameStatRepository{}
	player := &models.Player{ID: uuid.New()}

	stats.On("ListByPlayerSeason", mock.Anything, player.ID, "2025-26").
		Return([]*models.GameStatRow{statRow(floatPtr(20))}, nil).Once()

	cache := New(stats, &MockStatsProvider{}, "2025-26", 12*time.Hour, quietLogger())

	_, err := cache.Averages(context.Background(), player, Season)
	require.NoError(t, err)
	_, err = cache.Averages(context.Background(), player, Season)
	require.NoError(t, err)

	stats.AssertExpectations(t)
}

func TestSyncSkipsWhenFresh(t *testing.T) {
	stats := &MockGameStatRepository{}
	feed := &MockStatsProvider{}
	player := &models.Player{ID: uuid.New(), ExternalID: 1629029}

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	lastFetched := now.Add(-2 * time.Hour)
	stats.On("LastFetchedAt", mock.Anything, player.ID, "2025-26").Return(&lastFetched, nil)

	cache := New(stats, feed, "2025-26", 12*time.Hour, quietLogger()).
		WithClock(func() time.Time { return now })

	fetched, err := cache.Sync(context.Background(), player, false)
	require.NoError(t, err)
	assert.Zero(t, fetched)
	feed.AssertNotCalled(t, "FetchGameLog", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncForceBypassesFreshness(t *testing.T) {
	stats := &MockGameStatRepository{}
	feed := &MockStatsProvider{}
	player := &models.Player{ID: uuid.New(), ExternalID: 1629029}

	feed.On("FetchGameLog", mock.Anything, player.ExternalID, "2025-26").Return([]provider.GameLogRow{
		{ProviderGameKey: "0022600501", GameDate: time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), Points: floatPtr(31)},
	}, nil)
	stats.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	cache := New(stats, feed, "2025-26", 12*time.Hour, quietLogger())

	fetched, err := cache.Sync(context.Background(), player, true)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	stats.AssertCalled(t, "Upsert", mock.Anything, mock.Anything)
	// The freshness check is never consulted on a forced sync
	stats.AssertNotCalled(t, "LastFetchedAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncStaleFetchesAndStores(t *testing.T) {
	stats := &MockGameStatRepository{}
	feed := &MockStatsProvider{}
	player := &models.Player{ID: uuid.New(), ExternalID: 201939}

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	lastFetched := now.Add(-24 * time.Hour)
	stats.On("LastFetchedAt", mock.Anything, player.ID, "2025-26").Return(&lastFetched, nil)
	feed.On("FetchGameLog", mock.Anything, player.ExternalID, "2025-26").Return([]provider.GameLogRow{
		{ProviderGameKey: "0022600491", GameDate: now.Add(-36 * time.Hour), Points: floatPtr(28), Rebounds: floatPtr(6)},
		{ProviderGameKey: "0022600477", GameDate: now.Add(-72 * time.Hour), Points: floatPtr(35), Rebounds: floatPtr(5)},
	}, nil)
	stats.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	cache := New(stats, feed, "2025-26", 12*time.Hour, quietLogger()).
		WithClock(func() time.Time { return now })

	fetched, err := cache.Sync(context.Background(), player, false)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched)
	stats.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestSyncEmptyFetchWritesNothingButCountsAsFresh(t *testing.T) {
	stats := &MockGameStatRepository{}
	feed := &MockStatsProvider{}
	player := &models.Player{ID: uuid.New(), ExternalID: 1641705}

	stats.On("LastFetchedAt", mock.Anything, player.ID, "2025-26").Return(nil, nil)
	feed.On("FetchGameLog", mock.Anything, player.ExternalID, "2025-26").
		Return([]provider.GameLogRow{}, nil).Once()

	cache := New(stats, feed, "2025-26", 12*time.Hour, quietLogger())

	fetched, err := cache.Sync(context.Background(), player, false)
	require.NoError(t, err)
	assert.Zero(t, fetched)
	stats.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)

	// The attempt is remembered, so the next sync does not refetch
	_, err = cache.Sync(context.Background(), player, false)
	require.NoError(t, err)
	feed.AssertExpectations(t)
}
