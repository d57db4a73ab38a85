package spatial

import "strings"

const (
	// base32 alphabet for geohash
	base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

	// MaxGeohashPrecision is the longest cell id produced (about 4 cm)
	MaxGeohashPrecision = 12
)

// EncodeGeohash encodes a point into a geohash cell id.
// precision: number of characters in the geohash (1-12)
func EncodeGeohash(p Point, precision int) string {
	if precision < 1 {
		precision = 1
	}
	if precision > MaxGeohashPrecision {
		precision = MaxGeohashPrecision
	}

	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0

	out := make([]byte, 0, precision)
	even := true
	ch, bits := 0, 0
	for len(out) < precision {
		if even {
			mid := (minLng + maxLng) / 2
			if p.Lng > mid {
				ch |= 1 << (4 - bits)
				minLng = mid
			} else {
				maxLng = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if p.Lat > mid {
				ch |= 1 << (4 - bits)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		even = !even

		if bits++; bits == 5 {
			out = append(out, base32[ch])
			ch, bits = 0, 0
		}
	}
	return string(out)
}

// GeohashBounds returns the south-west and north-east corners of a cell.
// ok is false when the id contains characters outside the alphabet.
func GeohashBounds(cell string) (sw, ne Point, ok bool) {
	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0

	even := true
	for i := 0; i < len(cell); i++ {
		idx := strings.IndexByte(base32, cell[i])
		if idx < 0 {
			return Point{}, Point{}, false
		}
		for mask := 16; mask > 0; mask >>= 1 {
			if even {
				mid := (minLng + maxLng) / 2
				if idx&mask != 0 {
					minLng = mid
				} else {
					maxLng = mid
				}
			} else {
				mid := (minLat + maxLat) / 2
				if idx&mask != 0 {
					minLat = mid
				} else {
					maxLat = mid
				}
			}
			even = !even
		}
	}
	return Point{Lat: minLat, Lng: minLng}, Point{Lat: maxLat, Lng: maxLng}, true
}

// GeohashCenter returns the center of a cell
func GeohashCenter(cell string) (Point, bool) {
	sw, ne, ok := GeohashBounds(cell)
	if !ok {
		return Point{}, false
	}
	return Point{Lat: (sw.Lat + ne.Lat) / 2, Lng: (sw.Lng + ne.Lng) / 2}, true
}
