package wmr89

import (
	"reflect"
	"time"

	"github.com/chrissnell/oregonweather/internal/types"
)

// SensorMap maps Reading struct field names to the observation names the
// decoder emits.  The decoder itself is agnostic to this mapping; it is
// applied only when a SensorReading is converted for distribution.  Entries
// can be overridden per-device in the configuration, e.g. to store an
// auxiliary channel's temperature in a different field.
type SensorMap map[string]string

// DefaultSensorMap returns the stock mapping for the observations the WMR89
// actually reports.
func DefaultSensorMap() SensorMap {
	return SensorMap{
		"Barometer":       "barometer",
		"Pressure":        "pressure",
		"InTemp":          "temperature_in",
		"OutTemp":         "temperature_out",
		"ExtraTemp1":      "temperature_1",
		"ExtraTemp2":      "temperature_2",
		"InHumidity":      "humidity_in",
		"OutHumidity":     "humidity_out",
		"ExtraHumidity1":  "humidity_1",
		"ExtraHumidity2":  "humidity_2",
		"InDewpoint":      "dewpoint_in",
		"OutDewpoint":     "dewpoint_out",
		"ExtraDewpoint1":  "dewpoint_1",
		"ExtraDewpoint2":  "dewpoint_2",
		"WindSpeed":       "wind_speed",
		"WindGust":        "wind_gust",
		"WindDir":         "wind_dir",
		"WindChill":       "windchill",
		"RainRate":        "rain_rate",
		"RainIncremental": "rain",
		"RainTotal":       "rain_total",
		"RainHour":        "rain_hour",
		"Rain24":          "rain_24",
	}
}

// Merge overlays per-device overrides onto the map, returning a new map.
func (m SensorMap) Merge(overrides map[string]string) SensorMap {
	merged := make(SensorMap, len(m)+len(overrides))
	for field, obs := range m {
		merged[field] = obs
	}
	for field, obs := range overrides {
		merged[field] = obs
	}
	return merged
}

// Apply converts a decoded SensorReading into a Reading, assigning each
// mapped observation to its struct field.  Absent (sentinel) observations
// leave their fields at zero.  Mapped fields that don't exist on the Reading
// struct are skipped, which lets a config override disable a field by
// pointing it at a bogus name.
func (m SensorMap) Apply(sr *SensorReading) types.Reading {
	r := types.Reading{
		Timestamp: time.Unix(sr.DateTime, 0),
	}

	v := reflect.ValueOf(&r).Elem()
	for field, obs := range m {
		val, ok := sr.Values[obs]
		if !ok || val == nil {
			continue
		}
		f := v.FieldByName(field)
		if f.IsValid() && f.Kind() == reflect.Float32 {
			f.SetFloat(*val)
		}
	}

	return r
}
