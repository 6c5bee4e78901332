package nightflash

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/signal"
)

// Schedule tells whether the signal should be flashing because it is
// night at the configured location.
type Schedule struct {
	latitude  float64
	longitude float64
}

func New(cfg config.NightFlashConfig) *Schedule {
	return &Schedule{latitude: cfg.Latitude, longitude: cfg.Longitude}
}

// IsNight reports whether now lies outside every sunrise-to-sunset span
// around it. Days without sunrise or sunset (polar day and night) count
// as day, so the signal keeps its normal cycle.
func (s *Schedule) IsNight(now time.Time) bool {
	now = now.UTC()
	for _, offset := range []int{-1, 0, 1} {
		day := now.AddDate(0, 0, offset)
		rise, set := sunrise.SunriseSunset(s.latitude, s.longitude, day.Year(), day.Month(), day.Day())
		if rise.IsZero() || set.IsZero() {
			return false
		}
		if !now.Before(rise) && now.Before(set) {
			return false
		}
	}
	return true
}

// Desired is the mode the schedule asks for at now.
func (s *Schedule) Desired(now time.Time) signal.Mode {
	if s.IsNight(now) {
		return signal.Emergency
	}
	return signal.Normal
}
