package analysis

import (
	"fmt"
	"strings"
)

// Site describes where the sensor is installed and what it is.
type Site struct {
	Place     string
	Latitude  float64
	Longitude float64
	AltitudeM float64
	Device    string
	Sampling  string
	Setting   string
}

// DefaultSite is the campus deployment the ESP32 logs come from.
func DefaultSite() Site {
	return Site{
		Place:     "Universidad EAFIT",
		Latitude:  6.2006,
		Longitude: -75.5783,
		AltitudeM: 1495,
		Device:    "ESP32",
		Sampling:  "configurable",
		Setting:   "university campus",
	}
}

func (s Site) markdown(b *strings.Builder) {
	b.WriteString("\n## Measurement site\n\n")
	b.WriteString(fmt.Sprintf("- Place: %s\n", s.Place))
	b.WriteString(fmt.Sprintf("- Coordinates: %.4f, %.4f\n", s.Latitude, s.Longitude))
	b.WriteString(fmt.Sprintf("- Altitude: ~%.0f m above sea level\n", s.AltitudeM))
	b.WriteString(fmt.Sprintf("- Device: %s measuring temperature and humedad\n", s.Device))
	b.WriteString(fmt.Sprintf("- Sampling: %s\n", s.Sampling))
	b.WriteString(fmt.Sprintf("- Setting: %s\n", s.Setting))
}
