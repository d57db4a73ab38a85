package models

import "github.com/safetour/routeguard/internal/spatial"

// TrackStatus is a point-in-time copy of a subject's tracking state
type TrackStatus struct {
	SubjectID                string          `json:"subjectId"`
	Route                    []spatial.Point `json:"route"`
	RouteLengthMeters        float64         `json:"routeLengthMeters"`
	LastPosition             *PositionSample `json:"lastPosition"`
	CumulativeDistanceMeters float64         `json:"cumulativeDistanceMeters"`
	InstantaneousSpeedKmh    float64         `json:"instantaneousSpeedKmh"`
	HeadingDegrees           float64         `json:"headingDegrees"`
	OffRoute                 bool            `json:"offRoute"`
	DeviationMeters          *float64        `json:"deviationMeters"` // nil before the first sample or with an empty route
	InZone                   *spatial.Zone   `json:"inZone"`
	TripStartTime            int64           `json:"tripStartTime"` // Unix milliseconds, 0 before the first sample
	SampleCount              int64           `json:"sampleCount"`
	HistoryLength            int             `json:"historyLength"`
}

// DurationMinutes returns whole minutes elapsed since the trip started
func (s TrackStatus) DurationMinutes(nowMs int64) int64 {
	if s.TripStartTime == 0 || nowMs < s.TripStartTime {
		return 0
	}
	return (nowMs - s.TripStartTime) / 60000
}

// TrackedSummary is one row of the dashboard aggregation
type TrackedSummary struct {
	TrackStatus
	DurationMinutes int64            `json:"durationMinutes"`
	RecentLocations []PositionSample `json:"recentLocations"`
}
