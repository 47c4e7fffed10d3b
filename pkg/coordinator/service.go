// Coordinator is the update loop for one inverter gateway: it owns the
// polling cadence, doubles the interval on failure up to a ceiling,
// substitutes cached daily accumulators when the device is briefly
// unreachable, and writes every good reading through to durable storage
// so restarts pick up where the last poll left off.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/rs/zerolog/log"
)

// New creates a coordinator for one device. fetch and store are injected;
// a nil clock means real time. dailyFields are the accumulator fields that
// reset at local midnight and must keep their cached value on same-day
// substitution, everything else is zeroed.
func New(deviceIp string, interval time.Duration, fetch FetchFunc, store Store, dailyFields []string, clock Clock) *Coordinator {
	if clock == nil {
		clock = realClock{}
	}

	daily := make(map[string]struct{}, len(dailyFields))
	for _, f := range dailyFields {
		daily[f] = struct{}{}
	}

	return &Coordinator{
		deviceIp:        deviceIp,
		fetch:           fetch,
		store:           store,
		clock:           clock,
		dailyFields:     daily,
		baseInterval:    interval,
		currentInterval: interval,
		state:           StateUninitialized,
		listeners:       make(map[int]func(time.Duration)),
		reloadCh:        make(chan time.Duration, 1),
		done:            make(chan struct{}),
	}
}

// LoadPersisted seeds the cache from durable storage. Missing or corrupt
// state is logged and ignored; the coordinator starts with an empty cache.
// Call once before Run, it does not trigger a fetch.
func (c *Coordinator) LoadPersisted() {
	reading, timestamp, err := c.store.Load(c.deviceIp)
	if err != nil {
		log.Warn().Err(err).Str("device", c.deviceIp).Msg("Could not load persisted reading, starting with empty cache")
		return
	}
	if reading == nil || timestamp.IsZero() {
		return
	}

	c.mu.Lock()
	c.lastReading = reading
	c.lastUpdate = timestamp
	c.mu.Unlock()

	log.Debug().
		Str("device", c.deviceIp).
		Time("timestamp", timestamp).
		Msg("Seeded cache from persisted reading")
}

// Refresh runs one poll cycle: fetch with a bounded timeout, then either
// store and return the fresh reading, or back off and substitute from
// cache. The only error it can return is ErrUpdateFailed, raised when the
// fetch failed and there is no cache to substitute from. Refreshes are
// serialized; a tick never overlaps an in-flight fetch.
func (c *Coordinator) Refresh(ctx context.Context) (types.Reading, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	reading, err := c.fetch(fetchCtx)
	cancel()

	now := c.clock.Now()
	if err == nil && reading == nil {
		err = fmt.Errorf("fetch returned no data")
	}
	if err != nil {
		return c.applyFailure(err, now)
	}
	return c.applySuccess(reading, now), nil
}

func (c *Coordinator) applySuccess(reading types.Reading, now time.Time) types.Reading {
	c.mu.Lock()
	c.lastReading = reading
	c.lastUpdate = now
	c.state = StateReady

	var notify []func(time.Duration)
	restored := false
	if c.currentInterval != c.baseInterval {
		c.currentInterval = c.baseInterval
		notify = c.listenersLocked()
		restored = true
	}
	interval := c.currentInterval
	c.mu.Unlock()

	if restored {
		log.Info().
			Str("device", c.deviceIp).
			Dur("interval", interval).
			Msg("Connection restored, resetting poll interval")
		c.fireIntervalChange(notify, interval)
	}

	// Write-through. A storage problem must never fail the refresh.
	if err := c.store.Save(c.deviceIp, reading, now); err != nil {
		log.Warn().Err(err).Str("device", c.deviceIp).Msg("Could not persist reading")
	}

	return reading
}

func (c *Coordinator) applyFailure(fetchErr error, now time.Time) (types.Reading, error) {
	c.mu.Lock()

	// Backoff applies on every failure, substitutable or not.
	var notify []func(time.Duration)
	backedOff := false
	if c.currentInterval < MaxInterval {
		next := c.currentInterval * 2
		if next > MaxInterval {
			next = MaxInterval
		}
		c.currentInterval = next
		notify = c.listenersLocked()
		backedOff = true
	}
	interval := c.currentInterval

	cached := c.lastReading
	cachedAt := c.lastUpdate

	var substitute types.Reading
	var err error
	switch {
	case cached != nil && sameLocalDay(cachedAt, now):
		// Daily accumulators freeze at their last value so totals do not
		// visibly reset mid-day; instantaneous fields go to zero because
		// holding them stale would claim activity that is not happening.
		substitute = make(types.Reading, len(cached))
		for k, v := range cached {
			if _, daily := c.dailyFields[k]; daily {
				substitute[k] = v
			} else {
				substitute[k] = 0
			}
		}
		c.state = StateDegraded
	case cached != nil:
		// Day boundary crossed since the cache was taken; the daily
		// accumulators have reset on the device, so everything is zero.
		substitute = make(types.Reading, len(cached))
		for k := range cached {
			substitute[k] = 0
		}
		c.state = StateDegraded
	default:
		c.state = StateUnavailable
		err = errors.Join(ErrUpdateFailed, fetchErr)
	}
	c.mu.Unlock()

	if backedOff {
		log.Warn().
			Err(fetchErr).
			Str("device", c.deviceIp).
			Dur("interval", interval).
			Msg("Fetch failed, increasing poll interval")
		c.fireIntervalChange(notify, interval)
	}

	if err != nil {
		log.Warn().Err(fetchErr).Str("device", c.deviceIp).Msg("Fetch failed with no cache available")
		return nil, err
	}

	log.Warn().
		Err(fetchErr).
		Str("device", c.deviceIp).
		Msg("Fetch failed, serving substituted reading from cache")

	return substitute, nil
}

// UpdateInterval applies a host reconfiguration: both the base and the
// effective interval change immediately, overriding any active backoff.
func (c *Coordinator) UpdateInterval(interval time.Duration) {
	c.mu.Lock()
	c.baseInterval = interval
	c.currentInterval = interval
	notify := c.listenersLocked()
	c.mu.Unlock()

	log.Info().Str("device", c.deviceIp).Dur("interval", interval).Msg("Poll interval reconfigured")
	c.fireIntervalChange(notify, interval)
}

// SubscribeIntervalChange registers a listener fired whenever the
// effective poll interval changes. The returned func unsubscribes it.
func (c *Coordinator) SubscribeIntervalChange(listener func(time.Duration)) func() {
	c.mu.Lock()
	id := c.nextListenerId
	c.nextListenerId++
	c.listeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Run drives the poll loop: one eager refresh so consumers have data
// before the first tick, then a refresh per tick. onReading receives
// every fresh or substituted reading, onError every hard failure; either
// may be nil. Returns when the context is done or Shutdown is called.
func (c *Coordinator) Run(ctx context.Context, onReading func(types.Reading), onError func(error)) error {
	ticker := c.clock.Ticker(c.CurrentInterval())
	defer ticker.Stop()

	log.Info().
		Str("device", c.deviceIp).
		Dur("interval", c.CurrentInterval()).
		Msg("Starting poll loop")

	doRefresh := func() {
		reading, err := c.Refresh(ctx)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onReading != nil {
			onReading(reading)
		}
	}

	doRefresh()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-ticker.Chan():
			doRefresh()
		case d := <-c.reloadCh:
			ticker.Stop()
			ticker = c.clock.Ticker(d)
		}
	}
}

// Shutdown stops scheduling further ticks and drops all interval
// listeners. It does not interrupt an in-flight refresh. Idempotent.
func (c *Coordinator) Shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	c.listeners = make(map[int]func(time.Duration))
	c.mu.Unlock()
}

func (c *Coordinator) DeviceIp() string {
	return c.deviceIp
}

// LastReading returns the last successfully fetched reading, nil if none.
func (c *Coordinator) LastReading() types.Reading {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReading
}

// LastUpdateTime returns when LastReading was fetched, zero if never.
func (c *Coordinator) LastUpdateTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdate
}

func (c *Coordinator) CurrentInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentInterval
}

func (c *Coordinator) BaseInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseInterval
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// listenersLocked snapshots the listener set; callers fire the copies
// after releasing the mutex so a listener can use coordinator accessors.
func (c *Coordinator) listenersLocked() []func(time.Duration) {
	out := make([]func(time.Duration), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

func (c *Coordinator) fireIntervalChange(listeners []func(time.Duration), interval time.Duration) {
	// Hand the scheduler its new period; stale pending reloads are dropped.
	select {
	case <-c.reloadCh:
	default:
	}
	select {
	case c.reloadCh <- interval:
	default:
	}

	for _, fn := range listeners {
		fn(interval)
	}
}

// Both timestamps are compared on their local calendar date; the device
// resets its daily accumulators at local midnight.
func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
