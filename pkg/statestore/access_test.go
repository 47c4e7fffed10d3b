package statestore

import (
	"os"
	"testing"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The DB handle is a package singleton, so the data dir override has to
// be in place before anything touches it.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "oim-statestore-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("OIM_DATA_DIR", dir)
	InitializeDatabase()

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	reading := types.Reading{
		"Mac":                 "AA:BB:CC",
		"InputPower":          300.5,
		"TodayGenerateEnergy": 5.2,
	}
	timestamp := time.Date(2026, 3, 14, 12, 30, 45, 123456789, time.Local)

	require.NoError(t, SaveDeviceState("192.168.1.50", reading, timestamp))

	got, gotTime, err := LoadDeviceState("192.168.1.50")
	require.NoError(t, err)
	assert.Equal(t, reading, got)
	assert.True(t, timestamp.Equal(gotTime))
}

func TestSaveOverwritesPreviousReading(t *testing.T) {
	first := types.Reading{"InputPower": 100.0}
	second := types.Reading{"InputPower": 200.0}

	require.NoError(t, SaveDeviceState("192.168.1.51", first, time.Now()))
	require.NoError(t, SaveDeviceState("192.168.1.51", second, time.Now()))

	got, _, err := LoadDeviceState("192.168.1.51")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestLoadMissingDeviceIsEmptyCache(t *testing.T) {
	got, gotTime, err := LoadDeviceState("10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, gotTime.IsZero())
}

func TestLoadMalformedDataIsEmptyCache(t *testing.T) {
	db := GetDB()
	_, err := db.Exec(
		"INSERT INTO device_state (device_ip, version, data, timestamp) VALUES (?, ?, ?, ?)",
		"192.168.1.52", SchemaVersion, "{not json", time.Now().Format(time.RFC3339Nano))
	require.NoError(t, err)

	got, gotTime, err := LoadDeviceState("192.168.1.52")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, gotTime.IsZero())
}

func TestLoadUnknownSchemaVersionIsEmptyCache(t *testing.T) {
	db := GetDB()
	_, err := db.Exec(
		"INSERT INTO device_state (device_ip, version, data, timestamp) VALUES (?, ?, ?, ?)",
		"192.168.1.53", SchemaVersion+1, `{"InputPower": 1}`, time.Now().Format(time.RFC3339Nano))
	require.NoError(t, err)

	got, _, err := LoadDeviceState("192.168.1.53")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteDeviceState(t *testing.T) {
	require.NoError(t, SaveDeviceState("192.168.1.54", types.Reading{"InputPower": 1.0}, time.Now()))
	require.NoError(t, DeleteDeviceState("192.168.1.54"))

	got, _, err := LoadDeviceState("192.168.1.54")
	require.NoError(t, err)
	assert.Nil(t, got)
}
