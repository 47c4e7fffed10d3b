package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/pathing"
)

const DefaultScanIntervalSeconds = 60

var ActiveMonitorConfig *MonitorConfig

func LoadMonitorConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "inverter_monitor.toml")

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &MonitorConfig{
			ListenAddress: "0.0.0.0",
			ListenPort:    9041,
			Inverters: []InverterConfig{
				{
					IpAddress:           "192.168.1.100",
					ScanIntervalSeconds: DefaultScanIntervalSeconds,
				},
			},
		}
		// Create file
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		ActiveMonitorConfig = cfg
		return nil
	}

	// Load existing config
	var cfg MonitorConfig
	_, err := toml.DecodeFile(configPath, &cfg)
	if err != nil {
		return err
	}

	// Unset interval means default, not "poll as fast as possible"
	for i := range cfg.Inverters {
		if cfg.Inverters[i].ScanIntervalSeconds <= 0 {
			cfg.Inverters[i].ScanIntervalSeconds = DefaultScanIntervalSeconds
		}
	}

	ActiveMonitorConfig = &cfg
	return nil
}
