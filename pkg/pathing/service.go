package pathing

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// EnsureDataDir creates the data directory if missing.
// Must be called on startup before opening the state database.
func EnsureDataDir() {
	dir := GetDataDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Could not create data directory")
		}
	}
}

func GetStateDbPath() string {
	return filepath.Join(GetDataDir(), "oim-state.db")
}

// GetDataDir returns the state directory.
// OIM_DATA_DIR overrides the install default.
func GetDataDir() string {
	if dir := os.Getenv("OIM_DATA_DIR"); dir != "" {
		return dir
	}
	return "/var/lib/open_inverter_monitor"
}

// GetConfigDir returns the config directory.
// OIM_CONFIG_DIR overrides the install default.
func GetConfigDir() string {
	if dir := os.Getenv("OIM_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/open_inverter_monitor"
}
