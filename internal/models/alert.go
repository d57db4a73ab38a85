package models

import (
	"github.com/google/uuid"
	"github.com/safetour/routeguard/internal/spatial"
)

// Alert kinds
const (
	AlertOffRoute   = "off-route"
	AlertDangerZone = "danger-zone"
	AlertDebug      = "debug"
)

// Alert is an append-only record of a safety event for a subject
type Alert struct {
	ID             string        `json:"id"`
	SubjectID      string        `json:"subjectId"`
	Position       spatial.Point `json:"position"`
	Timestamp      int64         `json:"timestamp"` // Unix milliseconds
	Kind           string        `json:"kind"`
	DistanceMeters float64       `json:"distanceMeters"`
	Zone           string        `json:"zone,omitempty"`
	RouteMissing   bool          `json:"routeMissing,omitempty"` // off-route because no route is planned; distance is 0
}

// NewAlert builds an alert with a fresh id
func NewAlert(subjectID, kind string, sample PositionSample, distance float64) Alert {
	return Alert{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		Position:       sample.Point(),
		Timestamp:      sample.Timestamp,
		Kind:           kind,
		DistanceMeters: distance,
	}
}
