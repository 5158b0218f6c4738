package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/internal/models"
)

func writeSeedFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSeedFromCSV(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewIngestionService(repo, testLogger, testMetrics)

	path := writeSeedFile(t, "Date,Temperature(°C),Weather\n"+
		"2023-04-01,12.5,Sunny\n"+
		"2023-04-02,14.0,Rainy\n"+
		"2023-04-03,15.5,Fog\n")

	result, err := svc.SeedFromCSV(context.Background(), path, 2, false)

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 3, result.SeededRecords)
	assert.Equal(t, 0, result.SkippedRows)
	assert.False(t, result.AlreadySeeded)

	// Batch size 2 over 3 rows: one full batch plus the remainder.
	assert.Equal(t, 2, repo.insertCalls)
	require.Len(t, repo.docs, 3)
	assert.Equal(t, "2023-04-01", repo.docs[0]["Date"])
	assert.Equal(t, "Sunny", repo.docs[0]["Weather"])
}

func TestSeedFromCSV_SkipsWhenNotEmpty(t *testing.T) {
	repo := &fakeRepository{docs: []models.RawDocument{
		{"Date": "2023-01-01"},
	}}
	svc := NewIngestionService(repo, testLogger, testMetrics)

	path := writeSeedFile(t, "Date\n2023-04-01\n")

	result, err := svc.SeedFromCSV(context.Background(), path, 100, false)

	require.NoError(t, err)
	assert.True(t, result.AlreadySeeded)
	assert.Equal(t, 0, result.SeededRecords)
	assert.Equal(t, 0, repo.insertCalls)
}

func TestSeedFromCSV_ReplaceClearsFirst(t *testing.T) {
	repo := &fakeRepository{docs: []models.RawDocument{
		{"Date": "2023-01-01"},
		{"Date": "2023-01-02"},
	}}
	svc := NewIngestionService(repo, testLogger, testMetrics)

	path := writeSeedFile(t, "Date\n2023-04-01\n")

	result, err := svc.SeedFromCSV(context.Background(), path, 100, true)

	require.NoError(t, err)
	assert.Equal(t, 1, repo.clearCalls)
	assert.False(t, result.AlreadySeeded)
	assert.Equal(t, 1, result.SeededRecords)
	require.Len(t, repo.docs, 1, "stale records must not survive a replace")
}

func TestSeedFromCSV_MissingFile(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewIngestionService(repo, testLogger, testMetrics)

	_, err := svc.SeedFromCSV(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), 100, false)

	var unavailable *models.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, models.ErrMissingFile, unavailable.Kind)
	assert.False(t, unavailable.IsTransient())
}

func TestSeedFromCSV_HeaderWithoutDateColumn(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewIngestionService(repo, testLogger, testMetrics)

	path := writeSeedFile(t, "Temperature(°C),Weather\n12.5,Sunny\n")

	_, err := svc.SeedFromCSV(context.Background(), path, 100, false)

	var unavailable *models.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, models.ErrMalformedSchema, unavailable.Kind)
	assert.Equal(t, 0, repo.insertCalls)
}

func TestSeedFromCSV_CountFailurePropagates(t *testing.T) {
	repo := &fakeRepository{countErr: &models.DataUnavailableError{
		Kind: models.ErrConnectionFailure,
		Err:  errors.New("no reachable servers"),
	}}
	svc := NewIngestionService(repo, testLogger, testMetrics)

	path := writeSeedFile(t, "Date\n2023-04-01\n")

	_, err := svc.SeedFromCSV(context.Background(), path, 100, false)

	var unavailable *models.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, models.ErrConnectionFailure, unavailable.Kind)
}
