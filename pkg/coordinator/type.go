package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
)

var (
	// ErrUpdateFailed is the only error a refresh surfaces to the host:
	// the fetch failed and no cached reading exists to substitute.
	ErrUpdateFailed = fmt.Errorf("inverter update failed")
)

const (
	// Ceiling for failure backoff. Doubling stops here.
	MaxInterval = 5 * time.Minute

	// Bound on a single fetch so the scheduler is never starved.
	updateTimeout = 15 * time.Second
)

// FetchFunc performs one fetch against the device. Injected so the
// scheduler and substitution logic can be tested without a gateway.
type FetchFunc func(ctx context.Context) (types.Reading, error)

// Store persists the last known good reading per device.
// Load returns an empty reading and zero time when nothing is stored;
// both methods may fail without affecting refresh results.
type Store interface {
	Load(deviceIp string) (types.Reading, time.Time, error)
	Save(deviceIp string, reading types.Reading, timestamp time.Time) error
}

// Clock abstracts time for the scheduler so backoff and day-rollover
// behavior can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// State of a coordinator as seen by the host.
type State uint8

const (
	// No refresh has completed yet.
	StateUninitialized State = iota
	// Last refresh returned fresh data from the device.
	StateReady
	// Serving substituted data under active backoff.
	StateDegraded
	// Fetch failed with no cache at all; hard error until next success.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Coordinator owns the polling cadence, failure backoff, cache
// substitution and persistence for one inverter gateway. All access to
// its state goes through its methods.
type Coordinator struct {
	deviceIp    string
	fetch       FetchFunc
	store       Store
	clock       Clock
	dailyFields map[string]struct{}

	mu              sync.Mutex
	baseInterval    time.Duration
	currentInterval time.Duration
	lastReading     types.Reading
	lastUpdate      time.Time
	state           State
	listeners       map[int]func(time.Duration)
	nextListenerId  int

	// Serializes refreshes; ticks never overlap an in-flight fetch.
	refreshMu sync.Mutex

	reloadCh  chan time.Duration
	done      chan struct{}
	closeOnce sync.Once
}
