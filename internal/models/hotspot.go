package models

import "github.com/safetour/routeguard/internal/spatial"

// Hotspot counts archived alerts falling in one geohash cell
type Hotspot struct {
	Cell   string        `json:"cell"`
	Center spatial.Point `json:"center"`
	Count  int64         `json:"count"`
	Kinds  []string      `json:"kinds"`
}
