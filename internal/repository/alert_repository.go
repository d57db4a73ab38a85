package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/models"
	"github.com/safetour/routeguard/internal/spatial"
)

// ArchiveGeohashPrecision is the cell size stored with each alert (about 5 m)
const ArchiveGeohashPrecision = 9

// AlertRepository persists alerts to the archive table
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert stores an alert. Re-inserting the same id is a no-op.
func (r *AlertRepository) Insert(ctx context.Context, a models.Alert) error {
	query := `INSERT OR IGNORE INTO alerts
		(id, subject_id, kind, lat, lng, timestamp, distance_m, zone, route_missing, geohash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.SubjectID, a.Kind, a.Position.Lat, a.Position.Lng,
		a.Timestamp, a.DistanceMeters, a.Zone, a.RouteMissing,
		spatial.EncodeGeohash(a.Position, ArchiveGeohashPrecision),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert %s: %w", a.ID, err)
	}
	return nil
}

// ListBySubject returns up to limit archived alerts for a subject, newest first
func (r *AlertRepository) ListBySubject(ctx context.Context, subjectID string, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, subject_id, kind, lat, lng, timestamp, distance_m, zone, route_missing
		FROM alerts
		WHERE subject_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		var a models.Alert
		var p spatial.Point
		if err := rows.Scan(&a.ID, &a.SubjectID, &a.Kind, &p.Lat, &p.Lng,
			&a.Timestamp, &a.DistanceMeters, &a.Zone, &a.RouteMissing); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Position = p
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

// CountBySubject returns the number of archived alerts for a subject
func (r *AlertRepository) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts WHERE subject_id = ?", subjectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}

// Hotspots groups archived alerts by geohash cell of the given precision
// and returns the busiest cells first
func (r *AlertRepository) Hotspots(ctx context.Context, precision, limit int) ([]models.Hotspot, error) {
	if precision < 1 || precision > ArchiveGeohashPrecision {
		return nil, fmt.Errorf("precision must be between 1 and %d", ArchiveGeohashPrecision)
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT substr(geohash, 1, ?) AS cell, COUNT(*) AS n, GROUP_CONCAT(DISTINCT kind)
		FROM alerts
		WHERE geohash != ''
		GROUP BY cell
		ORDER BY n DESC, cell ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, precision, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotspots: %w", err)
	}
	defer rows.Close()

	hotspots := make([]models.Hotspot, 0)
	for rows.Next() {
		var h models.Hotspot
		var kinds string
		if err := rows.Scan(&h.Cell, &h.Count, &kinds); err != nil {
			return nil, fmt.Errorf("failed to scan hotspot: %w", err)
		}
		center, ok := spatial.GeohashCenter(h.Cell)
		if !ok {
			logger.L().Warn("hotspot_bad_cell", "cell", h.Cell)
			continue
		}
		h.Center = center
		h.Kinds = strings.Split(kinds, ",")
		hotspots = append(hotspots, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotspots: %w", err)
	}
	return hotspots, nil
}
