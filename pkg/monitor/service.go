package monitor

import (
	"context"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/config"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/coordinator"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/inverter"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/sensors"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/rs/zerolog/log"
)

func New(store coordinator.Store) *Monitor {
	return &Monitor{
		store: store,
		fetchFor: func(deviceIp string) coordinator.FetchFunc {
			return inverter.NewClient(deviceIp).Fetch
		},
		coordinators: make(map[string]*coordinator.Coordinator),
		cancels:      make(map[string]func()),
	}
}

// AddDevice registers a device, seeds its cache from the state store and
// starts its poll loop. The device IP is the dedup key; adding it twice
// returns ErrDeviceExists. onReading receives every reading the loop
// produces, fresh or substituted; may be nil.
func (m *Monitor) AddDevice(ctx context.Context, cfg config.InverterConfig, onReading func(types.Reading)) (*coordinator.Coordinator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.coordinators[cfg.IpAddress]; exists {
		return nil, ErrDeviceExists
	}

	interval := time.Duration(cfg.ScanIntervalSeconds) * time.Second
	coord := coordinator.New(
		cfg.IpAddress,
		interval,
		m.fetchFor(cfg.IpAddress),
		m.store,
		sensors.DailyFields,
		m.clock,
	)

	coord.LoadPersisted()

	runCtx, cancel := context.WithCancel(ctx)
	m.coordinators[cfg.IpAddress] = coord
	m.cancels[cfg.IpAddress] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		onError := func(err error) {
			// Unavailable means no cache ever existed, which can only
			// happen when the device never answered since registration.
			// A device that drops out mid-run degrades instead.
			if coord.State() == coordinator.StateUnavailable {
				log.Warn().Err(err).Str("device", cfg.IpAddress).Msg("Device not ready, no data to serve")
			}
		}

		if err := coord.Run(runCtx, onReading, onError); err != nil && err != context.Canceled {
			log.Error().Err(err).Str("device", cfg.IpAddress).Msg("Poll loop stopped")
		}
	}()

	log.Info().Str("device", cfg.IpAddress).Dur("interval", interval).Msg("Registered inverter")
	return coord, nil
}

// Get returns the coordinator for a device IP, nil if not registered.
func (m *Monitor) Get(deviceIp string) *coordinator.Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coordinators[deviceIp]
}

// Devices lists the registered device IPs.
func (m *Monitor) Devices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.coordinators))
	for ip := range m.coordinators {
		out = append(out, ip)
	}
	return out
}

// RemoveDevice stops a device's poll loop, deregisters its listeners and
// drops it from the registry. The in-flight refresh, if any, completes.
func (m *Monitor) RemoveDevice(deviceIp string) error {
	m.mu.Lock()
	coord, exists := m.coordinators[deviceIp]
	cancel := m.cancels[deviceIp]
	delete(m.coordinators, deviceIp)
	delete(m.cancels, deviceIp)
	m.mu.Unlock()

	if !exists {
		return ErrDeviceUnknown
	}

	coord.Shutdown()
	cancel()
	log.Info().Str("device", deviceIp).Msg("Removed inverter")
	return nil
}

// Shutdown tears down every device and waits for the poll loops to exit.
func (m *Monitor) Shutdown() {
	for _, ip := range m.Devices() {
		if err := m.RemoveDevice(ip); err != nil {
			log.Warn().Err(err).Str("device", ip).Msg("Error removing inverter on shutdown")
		}
	}
	m.wg.Wait()
}
