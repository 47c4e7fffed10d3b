package monitor

import (
	"fmt"
	"sync"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/coordinator"
)

var (
	ErrDeviceExists  = fmt.Errorf("device already registered")
	ErrDeviceUnknown = fmt.Errorf("device not registered")
)

// Monitor owns every coordinator in the process, keyed by device IP.
// Devices are added explicitly at startup and torn down one by one; there
// is no other registry.
type Monitor struct {
	store coordinator.Store
	// Overridable in tests; defaults to an HTTP fetch per device.
	fetchFor func(deviceIp string) coordinator.FetchFunc
	clock    coordinator.Clock

	mu           sync.Mutex
	coordinators map[string]*coordinator.Coordinator
	cancels      map[string]func()
	wg           sync.WaitGroup
}
