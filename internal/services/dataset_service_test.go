package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/internal/config"
	"weather-dashboard/internal/models"
)

// fakeRepository is an in-memory WeatherRepository for service tests.
type fakeRepository struct {
	docs []models.RawDocument

	fetchErr  error
	countErr  error
	insertErr error

	fetchCalls  int
	insertCalls int
	clearCalls  int
}

func (f *fakeRepository) FetchAll(ctx context.Context) (*models.WeatherTable, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return models.NewTableFromDocuments(f.docs), nil
}

func (f *fakeRepository) Count(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.docs)), nil
}

func (f *fakeRepository) InsertBatch(ctx context.Context, docs []models.RawDocument) (int, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.docs = append(f.docs, docs...)
	return len(docs), nil
}

func (f *fakeRepository) Clear(ctx context.Context) error {
	f.clearCalls++
	f.docs = nil
	return nil
}

func (f *fakeRepository) HealthCheck(ctx context.Context) error {
	return f.fetchErr
}

func storeModeConfig() *config.Config {
	return &config.Config{
		Store: config.Store{
			URI:        "mongodb://localhost:27017",
			Database:   "weather_test",
			Collection: "observations",
		},
		Dataset: config.Dataset{
			SourceMode:    config.ModeStore,
			SeedBatchSize: 1000,
		},
	}
}

func newDatasetService(repo *fakeRepository, cfg *config.Config) *DatasetService {
	seeder := NewIngestionService(repo, testLogger, testMetrics)
	return NewDatasetService(repo, seeder, cfg, testLogger, testMetrics)
}

func TestDatasetService_LoadCleansAndCountsDrops(t *testing.T) {
	repo := &fakeRepository{docs: []models.RawDocument{
		{"Date": "2023-04-01", "Temperature(°C)": 12.5, "Weather": "Sunny"},
		{"Date": "not-a-date", "Temperature(°C)": 13.0},
		{"Date": "2023-04-02", "Temperature(°C)": 14.0, "Weather": "Rainy"},
	}}
	svc := newDatasetService(repo, storeModeConfig())

	table, err := svc.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.DroppedRows)
	assert.Equal(t, 4, table.Records[0].Month)
	assert.Equal(t, "April", table.Records[0].MonthName)
}

func TestDatasetService_LoadMemoizesPerFingerprint(t *testing.T) {
	repo := &fakeRepository{docs: []models.RawDocument{
		{"Date": "2023-04-01", "Temperature(°C)": 12.5},
	}}
	cfg := storeModeConfig()
	svc := newDatasetService(repo, cfg)
	ctx := context.Background()

	first, err := svc.Load(ctx)
	require.NoError(t, err)
	second, err := svc.Load(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second, "unchanged fingerprint must reuse the table")
	assert.Equal(t, 1, repo.fetchCalls)

	// Changing any source parameter invalidates implicitly.
	cfg.Store.Collection = "observations_v2"
	_, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.fetchCalls)
}

func TestDatasetService_InvalidateForcesReload(t *testing.T) {
	repo := &fakeRepository{docs: []models.RawDocument{
		{"Date": "2023-04-01", "Temperature(°C)": 12.5},
	}}
	svc := newDatasetService(repo, storeModeConfig())
	ctx := context.Background()

	_, err := svc.Load(ctx)
	require.NoError(t, err)

	svc.Invalidate()

	_, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.fetchCalls)
}

func TestDatasetService_LoadFailureYieldsEmptyTable(t *testing.T) {
	repo := &fakeRepository{fetchErr: &models.DataUnavailableError{
		Kind: models.ErrConnectionFailure,
		Err:  errors.New("connection refused"),
	}}
	svc := newDatasetService(repo, storeModeConfig())
	ctx := context.Background()

	table, err := svc.Load(ctx)

	require.Error(t, err)
	var unavailable *models.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, models.ErrConnectionFailure, unavailable.Kind)
	assert.True(t, unavailable.IsTransient())

	require.NotNil(t, table, "failures surface as an empty table, never nil")
	assert.True(t, table.Empty())

	// Failures are not cached: a recovered store is picked up next Load.
	repo.fetchErr = nil
	repo.docs = []models.RawDocument{{"Date": "2023-04-01"}}
	table, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestDatasetService_SeedModeSeedsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	seedFile := filepath.Join(dir, "weather.csv")
	csvBody := "Date,Temperature(°C),Weather\n" +
		"2023-04-01,12.5,Sunny\n" +
		"2023-04-02,14.0,Rainy\n"
	require.NoError(t, os.WriteFile(seedFile, []byte(csvBody), 0o644))

	cfg := storeModeConfig()
	cfg.Dataset.SourceMode = config.ModeSeed
	cfg.Dataset.SeedFile = seedFile

	repo := &fakeRepository{}
	svc := newDatasetService(repo, cfg)
	ctx := context.Background()

	table, err := svc.Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, repo.insertCalls)

	// A second load with a fresh cache must not seed again.
	svc.Invalidate()
	_, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.insertCalls, "non-empty store must skip seeding")
}
