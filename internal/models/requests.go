package models

import "github.com/safetour/routeguard/internal/spatial"

// RouteRequest is the body of POST /route
type RouteRequest struct {
	SubjectID string           `json:"subjectId" binding:"required"`
	Route     *[]spatial.Point `json:"route"`
}

// CheckpointRouteRequest is the body of POST /route/checkpoint
type CheckpointRouteRequest struct {
	SubjectID string        `json:"subjectId" binding:"required"`
	From      spatial.Point `json:"from"`
	To        spatial.Point `json:"to"`
	Steps     int           `json:"steps"`
}

// LocationRequest is the body of POST /location
type LocationRequest struct {
	SubjectID string   `json:"subjectId" binding:"required"`
	Lat       *float64 `json:"lat" binding:"required"`
	Lng       *float64 `json:"lng" binding:"required"`
	Timestamp *int64   `json:"timestamp"`
}

// DebugAlertRequest is the body of POST /debug/alert
type DebugAlertRequest struct {
	SubjectID      string   `json:"subjectId" binding:"required"`
	Lat            *float64 `json:"lat" binding:"required"`
	Lng            *float64 `json:"lng" binding:"required"`
	Timestamp      *int64   `json:"timestamp"`
	Kind           string   `json:"kind"`
	DistanceMeters float64  `json:"distanceMeters"`
}
