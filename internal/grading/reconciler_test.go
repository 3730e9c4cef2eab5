package grading

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/props-edge/internal/models"
	"github.com/yourusername/props-edge/internal/provider"
	"github.com/yourusername/props-edge/internal/repository"
	"github.com/yourusername/props-edge/internal/statscache"
)

// MockBetRepository mocks the bet repository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) UpsertPending(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) LockStarted(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBetRepository) ListGradable(ctx context.Context, cutoff time.Time) ([]*models.Bet, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Grade(ctx context.Context, id uuid.UUID, actual float64, won bool, gradedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, actual, won, gradedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) ListGraded(ctx context.Context) ([]*models.Bet, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Bet), args.Error(1)
}

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

// MockPlayerRepository mocks the player repository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.Player, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByName(ctx context.Context, fullName string) (*models.Player, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) ListAll(ctx context.Context) ([]*models.Player, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Player), args.Error(1)
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

type reconcilerFixture struct {
	bets       *MockBetRepository
	stats      *MockGameStatRepository
	players    *MockPlayerRepository
	feed       *MockStatsProvider
	reconciler *Reconciler
	now        time.Time
	player     *models.Player
	bet        *models.Bet
}

func newFixture(t *testing.T) *reconcilerFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	player := &models.Player{ID: uuid.New(), ExternalID: 203999, FullName: "Nikola Jokić"}
	bet := &models.Bet{
		ID:             uuid.New(),
		PlayerID:       player.ID,
		PlayerName:     player.FullName,
		StatType:       models.StatPoints,
		LineValue:      25.5,
		Recommendation: models.RecommendationOver,
		Confidence:     models.ConfidenceMedium,
		Stake:          decimal.NewFromInt(10),
		ModelID:        "pulsar_v1",
		GameTime:       now.Add(-6 * time.Hour),
		State:          models.BetStateLocked,
	}

	f := &reconcilerFixture{
		bets:    &MockBetRepository{},
		stats:   &MockGameStatRepository{},
		players: &MockPlayerRepository{},
		feed:    &MockStatsProvider{},
		now:     now,
		player:  player,
		bet:     bet,
	}

	cache := statscache.New(f.stats, f.feed, "2025-26", 12*time.Hour, log).
		WithClock(func() time.Time { return f.now })
	repos := &repository.Repositories{Bet: f.bets, GameStat: f.stats, Player: f.players}
	f.reconciler = NewReconciler(repos, cache, time.UTC, 4*time.Hour, log).
		WithClock(func() time.Time { return f.now })

	return f
}

// freshStats marks the player's stored rows as recently synced so the
// reconciler uses them without fetching
func (f *reconcilerFixture) freshStats() {
	lastFetched := f.now.Add(-1 * time.Hour)
	f.stats.On("LastFetchedAt", mock.Anything, f.player.ID, "2025-26").Return(&lastFetched, nil)
}

func TestGradePendingSettlesWinningOver(t *testing.T) {
	f := newFixture(t)
	f.freshStats()

	actual := 30.0
	row := &models.GameStatRow{PlayerID: f.player.ID, GameDate: f.bet.GameTime, Points: &actual}

	f.bets.On("LockStarted", mock.Anything, f.now).Return(0, nil)
	f.bets.On("ListGradable", mock.Anything, f.now.Add(-4*time.Hour)).Return([]*models.Bet{f.bet}, nil)
	f.players.On("GetByID", mock.Anything, f.player.ID).Return(f.player, nil)
	f.stats.On("GetByPlayerAndDateRange", mock.Anything, f.player.ID, mock.Anything, mock.Anything).Return(row, nil)
	f.bets.On("Grade", mock.Anything, f.bet.ID, 30.0, true, f.now).Return(true, nil)

	summary, err := f.reconciler.GradePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Graded)
	assert.Zero(t, summary.Errored)
	f.bets.AssertExpectations(t)
}

func TestGradePendingPushLosesBothWays(t *testing.T) {
	f := newFixture(t)
	f.freshStats()

	// Actual lands exactly on the line
	actual := 25.5
	row := &models.GameStatRow{PlayerID: f.player.ID, GameDate: f.bet.GameTime, Points: &actual}

	f.bets.On("LockStarted", mock.Anything, f.now).Return(0, nil)
	f.bets.On("ListGradable", mock.Anything, mock.Anything).Return([]*models.Bet{f.bet}, nil)
	f.players.On("GetByID", mock.Anything, f.player.ID).Return(f.player, nil)
	f.stats.On("GetByPlayerAndDateRange", mock.Anything, f.player.ID, mock.Anything, mock.Anything).Return(row, nil)
	f.bets.On("Grade", mock.Anything, f.bet.ID, 25.5, false, f.now).Return(true, nil)

	summary, err := f.reconciler.GradePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Graded)
	f.bets.AssertExpectations(t)
}

func TestGradePendingDidNotPlaySkips(t *testing.T) {
	f := newFixture(t)
	f.freshStats()

	f.bets.On("LockStarted", mock.Anything, f.now).Return(0, nil)
	f.bets.On("ListGradable", mock.Anything, mock.Anything).Return([]*models.Bet{f.bet}, nil)
	f.players.On("GetByID", mock.Anything, f.player.ID).Return(f.player, nil)
	f.stats.On("GetByPlayerAndDateRange", mock.Anything, f.player.ID, mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
	// The forced re-sync also finds no new games
	f.feed.On("FetchGameLog", mock.Anything, f.player.ExternalID, "2025-26").Return([]provider.GameLogRow{}, nil)
	// The player has rows for other dates, so the absence means a DNP
	f.stats.On("CountByPlayer", mock.Anything, f.player.ID).Return(12, nil)

	summary, err := f.reconciler.GradePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Graded)
	f.bets.AssertNotCalled(t, "Grade", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGradePendingNoRowsIsNotReady(t *testing.T) {
	f := newFixture(t)
	f.freshStats()

	f.bets.On("LockStarted", mock.Anything, f.now).Return(0, nil)
	f.bets.On("ListGradable", mock.Anything, mock.Anything).Return([]*models.Bet{f.bet}, nil)
	f.players.On("GetByID", mock.Anything, f.player.ID).Return(f.player, nil)
	f.stats.On("GetByPlayerAndDateRange", mock.Anything, f.player.ID, mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
	f.feed.On("FetchGameLog", mock.Anything, f.player.ExternalID, "2025-26").Return([]provider.GameLogRow{}, nil)
	f.stats.On("CountByPlayer", mock.Anything, f.player.ID).Return(0, nil)

	summary, err := f.reconciler.GradePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotReady)
	assert.Zero(t, summary.Graded)
}

func TestGradePendingSecondRunGradesNothing(t *testing.T) {
	f := newFixture(t)

	// The gradable query excludes already-graded bets, so a rerun sees none
	f.bets.On("LockStarted", mock.Anything, f.now).Return(0, nil)
	f.bets.On("ListGradable", mock.Anything, mock.Anything).Return([]*models.Bet{}, nil)

	summary, err := f.reconciler.GradePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Graded)
	assert.Zero(t, summary.Errored)
}

func TestGradePendingLostCASCountsSkipped(t *testing.T) {
	f := newFixture(t)
	f.freshStats()

	actual := 30.0
	row := &models.GameStatRow{PlayerID: f.player.ID, GameDate: f.bet.GameTime, Points: &actual}

	f.bets.On("LockStarted", mock.Anything, f.now).Return(0, nil)
	f.bets.On("ListGradable", mock.Anything, mock.Anything).Return([]*models.Bet{f.bet}, nil)
	f.players.On("GetByID", mock.Anything, f.player.ID).Return(f.player, nil)
	f.stats.On("GetByPlayerAndDateRange", mock.Anything, f.player.ID, mock.Anything, mock.Anything).Return(row, nil)
	// A concurrent pass already graded the bet
	f.bets.On("Grade", mock.Anything, f.bet.ID, 30.0, true, f.now).Return(false, nil)

	summary, err := f.reconciler.GradePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Graded)
	assert.Equal(t, 1, summary.Skipped)
}
