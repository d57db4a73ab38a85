package spatial

// Zone kinds
const (
	ZoneSafe   = "safe"
	ZoneDanger = "danger"
)

// Zone is a named circular region
type Zone struct {
	Name         string  `json:"name" yaml:"name" validate:"required"`
	Kind         string  `json:"kind" yaml:"kind" validate:"omitempty,oneof=safe danger"`
	Center       Point   `json:"center" yaml:"center"`
	RadiusMeters float64 `json:"radiusMeters" yaml:"radiusMeters" validate:"gt=0"`
}

// Contains reports whether p lies within the zone's radius (geodesic)
func (z Zone) Contains(p Point) bool {
	return Distance(p, z.Center) <= z.RadiusMeters
}

// FindContainingZone returns the first zone in list order containing p, or nil.
// Any containing zone wins; it is not a nearest-zone search.
func FindContainingZone(p Point, zones []Zone) *Zone {
	for i := range zones {
		if zones[i].Contains(p) {
			return &zones[i]
		}
	}
	return nil
}

// ZoneIndex is an immutable, ordered set of zones safe for concurrent reads
type ZoneIndex struct {
	zones []Zone
}

// NewZoneIndex copies zones into a new index
func NewZoneIndex(zones []Zone) *ZoneIndex {
	cp := make([]Zone, len(zones))
	copy(cp, zones)
	for i := range cp {
		if cp[i].Kind == "" {
			cp[i].Kind = ZoneSafe
		}
	}
	return &ZoneIndex{zones: cp}
}

// Find returns a copy of the first zone containing p
func (idx *ZoneIndex) Find(p Point) (Zone, bool) {
	if idx == nil {
		return Zone{}, false
	}
	z := FindContainingZone(p, idx.zones)
	if z == nil {
		return Zone{}, false
	}
	return *z, true
}

// All returns a copy of the configured zones in order
func (idx *ZoneIndex) All() []Zone {
	if idx == nil {
		return []Zone{}
	}
	out := make([]Zone, len(idx.zones))
	copy(out, idx.zones)
	return out
}
