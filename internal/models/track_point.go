package models

import "github.com/safetour/routeguard/internal/spatial"

// PositionSample is a single accepted GPS fix for a subject
type PositionSample struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"` // Unix milliseconds
}

// Point returns the sample's coordinate
func (s PositionSample) Point() spatial.Point {
	return spatial.Point{Lat: s.Lat, Lng: s.Lng}
}

// RouteMatchResult is the outcome of evaluating a sample against the planned route
type RouteMatchResult struct {
	Accepted       bool     `json:"accepted"`
	OffRoute       bool     `json:"offRoute"`
	DistanceMeters *float64 `json:"distanceMeters"` // nil when the route is empty
	NearestSegment int      `json:"nearestSegment"`
}
