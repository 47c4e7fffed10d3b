package sensors

import (
	"testing"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectTagsKnownFields(t *testing.T) {
	reading := types.Reading{
		"InputPower":          300.5,
		"TodayGenerateEnergy": 5.2,
		"SomeVendorExtra":     "abc",
	}

	values := Project(reading)
	require.Len(t, values, 3)

	// Sorted by key
	assert.Equal(t, "InputPower", values[0].Key)
	assert.Equal(t, "W", values[0].Unit)
	assert.Equal(t, ClassPower, values[0].Class)
	assert.Equal(t, 300.5, values[0].Value)

	assert.Equal(t, "SomeVendorExtra", values[1].Key)
	assert.Empty(t, values[1].Unit)
	assert.Equal(t, "abc", values[1].Value)

	assert.Equal(t, "TodayGenerateEnergy", values[2].Key)
	assert.Equal(t, "kWh", values[2].Unit)
	assert.Equal(t, ClassEnergy, values[2].Class)
}

func TestDailyFieldsAreAllEnergyAccumulators(t *testing.T) {
	for _, field := range DailyFields {
		assert.True(t, IsDailyField(field))

		desc, known := Descriptions[field]
		require.True(t, known, field)
		assert.Equal(t, ClassEnergy, desc.Class, field)
	}

	assert.False(t, IsDailyField("InputPower"))
	assert.False(t, IsDailyField("TotalGenerateEnergy"))
}

func TestAsFloat(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"float", 12.5, 12.5, true},
		{"int substitute zero", 0, 0, true},
		{"int64", int64(7), 7, true},
		{"string", "300", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AsFloat(tc.value)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInverterStatusName(t *testing.T) {
	assert.Equal(t, "Waiting", InverterStatusName(0))
	assert.Equal(t, "Normal", InverterStatusName(1))
	assert.Equal(t, "Fault", InverterStatusName(3))
	assert.Equal(t, "Unknown", InverterStatusName(99))
}
