package sensors

import (
	"sort"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
)

// Project maps a raw reading to typed, unit-tagged sensor values for the
// API. Known fields get their description, unknown fields pass through
// with just the key. Output is sorted by key for stable responses.
func Project(reading types.Reading) []SensorValue {
	out := make([]SensorValue, 0, len(reading))
	for key, value := range reading {
		desc, known := Descriptions[key]
		if !known {
			desc = SensorDescription{Key: key, Name: key}
		}
		out = append(out, SensorValue{
			SensorDescription: desc,
			Value:             value,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// IsDailyField reports whether a field is a midnight-reset accumulator.
func IsDailyField(key string) bool {
	for _, f := range DailyFields {
		if f == key {
			return true
		}
	}
	return false
}
