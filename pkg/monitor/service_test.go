package monitor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/config"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/coordinator"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]types.Reading
	ts   map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]types.Reading), ts: make(map[string]time.Time)}
}

func (s *memStore) Load(deviceIp string) (types.Reading, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[deviceIp], s.ts[deviceIp], nil
}

func (s *memStore) Save(deviceIp string, reading types.Reading, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[deviceIp] = reading
	s.ts[deviceIp] = timestamp
	return nil
}

func newTestMonitor(fetch coordinator.FetchFunc) *Monitor {
	m := New(newMemStore())
	m.fetchFor = func(deviceIp string) coordinator.FetchFunc { return fetch }
	return m
}

func okFetch(ctx context.Context) (types.Reading, error) {
	return types.Reading{"InputPower": 300.0}, nil
}

func TestAddDeviceStartsPolling(t *testing.T) {
	m := newTestMonitor(okFetch)
	defer m.Shutdown()

	readings := make(chan types.Reading, 4)
	coord, err := m.AddDevice(context.Background(), config.InverterConfig{
		IpAddress:           "192.168.1.100",
		ScanIntervalSeconds: 60,
	}, func(r types.Reading) { readings <- r })
	require.NoError(t, err)
	require.NotNil(t, coord)

	// The eager first refresh delivers a reading without waiting a tick
	select {
	case r := <-readings:
		assert.Equal(t, types.Reading{"InputPower": 300.0}, r)
	case <-time.After(2 * time.Second):
		t.Fatal("no reading delivered")
	}

	assert.Equal(t, coordinator.StateReady, coord.State())
	assert.Equal(t, []string{"192.168.1.100"}, m.Devices())
	assert.Same(t, coord, m.Get("192.168.1.100"))
}

func TestAddDeviceDeduplicatesByIp(t *testing.T) {
	m := newTestMonitor(okFetch)
	defer m.Shutdown()

	cfg := config.InverterConfig{IpAddress: "192.168.1.100", ScanIntervalSeconds: 60}
	_, err := m.AddDevice(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = m.AddDevice(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrDeviceExists)
}

func TestRemoveDevice(t *testing.T) {
	m := newTestMonitor(okFetch)
	defer m.Shutdown()

	cfg := config.InverterConfig{IpAddress: "192.168.1.100", ScanIntervalSeconds: 60}
	_, err := m.AddDevice(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.NoError(t, m.RemoveDevice("192.168.1.100"))
	assert.Nil(t, m.Get("192.168.1.100"))
	assert.Empty(t, m.Devices())

	// Removed means removable exactly once
	assert.ErrorIs(t, m.RemoveDevice("192.168.1.100"), ErrDeviceUnknown)

	// Re-adding after removal is allowed
	_, err = m.AddDevice(context.Background(), cfg, nil)
	assert.NoError(t, err)
}

func TestDeviceNotReadyOnFirstFailure(t *testing.T) {
	m := newTestMonitor(func(ctx context.Context) (types.Reading, error) {
		return nil, fmt.Errorf("no route to host")
	})
	defer m.Shutdown()

	coord, err := m.AddDevice(context.Background(), config.InverterConfig{
		IpAddress:           "192.168.1.100",
		ScanIntervalSeconds: 60,
	}, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return coord.State() == coordinator.StateUnavailable
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSeededDeviceSubstitutesImmediately(t *testing.T) {
	store := newMemStore()
	store.Save("192.168.1.100", types.Reading{"TodayGenerateEnergy": 5.2, "InputPower": 300.0}, time.Now())

	m := New(store)
	m.fetchFor = func(deviceIp string) coordinator.FetchFunc {
		return func(ctx context.Context) (types.Reading, error) {
			return nil, fmt.Errorf("no route to host")
		}
	}
	defer m.Shutdown()

	readings := make(chan types.Reading, 4)
	coord, err := m.AddDevice(context.Background(), config.InverterConfig{
		IpAddress:           "192.168.1.100",
		ScanIntervalSeconds: 60,
	}, func(r types.Reading) { readings <- r })
	require.NoError(t, err)

	// Persisted seed from today lets the failed first refresh serve a
	// substitute instead of going unavailable
	select {
	case r := <-readings:
		assert.Equal(t, types.Reading{"TodayGenerateEnergy": 5.2, "InputPower": 0}, r)
	case <-time.After(2 * time.Second):
		t.Fatal("no substituted reading delivered")
	}

	assert.Equal(t, coordinator.StateDegraded, coord.State())
}

func TestShutdownStopsAllDevices(t *testing.T) {
	m := newTestMonitor(okFetch)

	for _, ip := range []string{"192.168.1.100", "192.168.1.101"} {
		_, err := m.AddDevice(context.Background(), config.InverterConfig{
			IpAddress:           ip,
			ScanIntervalSeconds: 60,
		}, nil)
		require.NoError(t, err)
	}

	m.Shutdown()
	assert.Empty(t, m.Devices())
}
