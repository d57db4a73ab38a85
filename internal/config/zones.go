package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/safetour/routeguard/internal/spatial"
	"gopkg.in/yaml.v3"
)

// ZonesFile is the on-disk layout of the zone configuration
type ZonesFile struct {
	Zones []spatial.Zone `yaml:"zones" validate:"dive"`
}

// DefaultZones are used when no zone file is configured
func DefaultZones() []spatial.Zone {
	return []spatial.Zone{
		{Name: "Delhi Central", Kind: spatial.ZoneSafe, Center: spatial.Point{Lat: 28.7041, Lng: 77.1025}, RadiusMeters: 5000},
		{Name: "Noida Hub", Kind: spatial.ZoneSafe, Center: spatial.Point{Lat: 28.5355, Lng: 77.3910}, RadiusMeters: 3000},
	}
}

// LoadZones reads and validates the zone list. An empty path yields DefaultZones.
func LoadZones(path string) ([]spatial.Zone, error) {
	if path == "" {
		return DefaultZones(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zones file: %w", err)
	}

	var zf ZonesFile
	if err := yaml.Unmarshal(data, &zf); err != nil {
		return nil, fmt.Errorf("failed to parse zones file %s: %w", path, err)
	}

	v := validator.New()
	seen := make(map[string]bool, len(zf.Zones))
	for i, z := range zf.Zones {
		if err := v.Struct(z); err != nil {
			return nil, fmt.Errorf("zone %d (%q): %w", i, z.Name, err)
		}
		if seen[z.Name] {
			return nil, fmt.Errorf("zone %d: duplicate name %q", i, z.Name)
		}
		seen[z.Name] = true
		if z.Kind == "" {
			zf.Zones[i].Kind = spatial.ZoneSafe
		}
	}

	return zf.Zones, nil
}
