package statestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/rs/zerolog/log"
)

// SaveDeviceState overwrites the stored reading for a device.
func SaveDeviceState(deviceIp string, reading types.Reading, timestamp time.Time) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return err
	}

	db := GetDB()
	_, err = db.Exec(
		"INSERT INTO device_state (device_ip, version, data, timestamp) "+
			"VALUES (?, ?, ?, ?) "+
			"ON CONFLICT(device_ip) DO UPDATE SET "+
			"version = excluded.version, data = excluded.data, timestamp = excluded.timestamp",
		deviceIp,
		SchemaVersion,
		string(data),
		timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	return nil
}

// LoadDeviceState returns the stored reading and its timestamp for a
// device. A missing row, an unknown schema version or malformed content
// all come back as (nil, zero, nil): an empty cache, never an error the
// caller has to handle.
func LoadDeviceState(deviceIp string) (types.Reading, time.Time, error) {
	db := GetDB()

	var version int
	var data string
	var timestampStr string
	err := db.QueryRow(
		"SELECT version, data, timestamp FROM device_state WHERE device_ip = ?",
		deviceIp,
	).Scan(&version, &data, &timestampStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	if version != SchemaVersion {
		log.Warn().
			Str("device", deviceIp).
			Int("version", version).
			Msg("Unknown state schema version, ignoring stored reading")
		return nil, time.Time{}, nil
	}

	var reading types.Reading
	if err := json.Unmarshal([]byte(data), &reading); err != nil {
		log.Warn().Err(err).Str("device", deviceIp).Msg("Malformed stored reading, ignoring")
		return nil, time.Time{}, nil
	}

	timestamp, err := time.Parse(time.RFC3339Nano, timestampStr)
	if err != nil {
		log.Warn().Err(err).Str("device", deviceIp).Msg("Malformed stored timestamp, ignoring")
		return nil, time.Time{}, nil
	}

	return reading, timestamp, nil
}

// DeleteDeviceState drops the stored reading for a removed device.
func DeleteDeviceState(deviceIp string) error {
	db := GetDB()
	_, err := db.Exec("DELETE FROM device_state WHERE device_ip = ?", deviceIp)
	return err
}

func (s *SqlStore) Load(deviceIp string) (types.Reading, time.Time, error) {
	return LoadDeviceState(deviceIp)
}

func (s *SqlStore) Save(deviceIp string, reading types.Reading, timestamp time.Time) error {
	return SaveDeviceState(deviceIp, reading, timestamp)
}
