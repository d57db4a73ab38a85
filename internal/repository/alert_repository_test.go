package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/safetour/routeguard/internal/database"
	"github.com/safetour/routeguard/internal/models"
	"github.com/safetour/routeguard/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRepo(t *testing.T) *AlertRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "alerts.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAlertRepository(db)
}

func TestAlertRepositoryRoundTrip(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	a := models.NewAlert("u1", models.AlertDangerZone, models.PositionSample{Lat: 28.61, Lng: 77.27, Timestamp: 5000}, 0)
	a.Zone = "Floodplain"
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, a), "duplicate ids are ignored")

	got, err := repo.ListBySubject(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0])

	n, err := repo.CountBySubject(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAlertRepositoryNewestFirstWithLimit(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.Insert(ctx, models.NewAlert("u1", models.AlertOffRoute, models.PositionSample{Timestamp: i * 1000}, 150)))
	}
	require.NoError(t, repo.Insert(ctx, models.NewAlert("u2", models.AlertOffRoute, models.PositionSample{Timestamp: 9000}, 150)))

	got, err := repo.ListBySubject(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(5000), got[0].Timestamp)
	assert.Equal(t, int64(3000), got[2].Timestamp)

	none, err := repo.ListBySubject(ctx, "nobody", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAlertRepositoryRouteMissingFlag(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	a := models.NewAlert("u1", models.AlertOffRoute, models.PositionSample{Timestamp: 1}, 0)
	a.RouteMissing = true
	require.NoError(t, repo.Insert(ctx, a))

	got, err := repo.ListBySubject(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].RouteMissing)
}

func TestAlertRepositoryHotspots(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	delhi := models.PositionSample{Lat: 28.7041, Lng: 77.1025, Timestamp: 1}
	noida := models.PositionSample{Lat: 28.5355, Lng: 77.3910, Timestamp: 2}
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, models.NewAlert("u1", models.AlertOffRoute, delhi, 150)))
	}
	require.NoError(t, repo.Insert(ctx, models.NewAlert("u2", models.AlertDangerZone, delhi, 0)))
	require.NoError(t, repo.Insert(ctx, models.NewAlert("u3", models.AlertOffRoute, noida, 150)))

	got, err := repo.Hotspots(ctx, 6, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, spatial.EncodeGeohash(delhi.Point(), 6), got[0].Cell)
	assert.Equal(t, int64(4), got[0].Count)
	assert.ElementsMatch(t, []string{models.AlertOffRoute, models.AlertDangerZone}, got[0].Kinds)
	assert.Less(t, spatial.Distance(got[0].Center, delhi.Point()), 1000.0)
	assert.Equal(t, int64(1), got[1].Count)

	top, err := repo.Hotspots(ctx, 6, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	_, err = repo.Hotspots(ctx, 0, 10)
	assert.Error(t, err)
	_, err = repo.Hotspots(ctx, 10, 10)
	assert.Error(t, err)
}

func TestAlertRepositoryHotspotsSkipsBadCells(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, models.NewAlert("u1", models.AlertOffRoute, models.PositionSample{Lat: 28.7, Lng: 77.1, Timestamp: 1}, 150)))
	_, err := repo.db.ExecContext(ctx, `INSERT INTO alerts
		(id, subject_id, kind, lat, lng, timestamp, distance_m, geohash)
		VALUES ('bad', 'u1', 'off-route', 0, 0, 2, 0, 'aaaaaaaaa')`)
	require.NoError(t, err)

	got, err := repo.Hotspots(ctx, 6, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, spatial.EncodeGeohash(spatial.Point{Lat: 28.7, Lng: 77.1}, 6), got[0].Cell)
	assert.NotEqual(t, spatial.Point{}, got[0].Center)
}
