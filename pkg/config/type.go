package config

type InverterConfig struct {
	// Address of the inverter gateway on the local network
	IpAddress string `toml:"ip_address"`
	// Target poll period in seconds. Doubled on failure up to 5 minutes.
	ScanIntervalSeconds int `toml:"scan_interval_seconds"`
}

type MonitorConfig struct {
	ListenAddress string           `toml:"listen_address"`
	ListenPort    int              `toml:"listen_port"`
	Inverters     []InverterConfig `toml:"inverter"`
}
