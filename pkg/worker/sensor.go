// Package worker runs the sensor producers and the display consumer.
package worker

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ericogr/accel-color-monitor/pkg/sensor"
	"github.com/ericogr/accel-color-monitor/pkg/shared"
)

// DefaultPollInterval is the delay between two reads of the same sensor.
const DefaultPollInterval = 500 * time.Millisecond

// State is the lifecycle position of a sensor worker.
type State int32

const (
	Uninit State = iota
	Running
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Uninit:
		return "uninit"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// InitError reports a sensor that could not be initialized. It only takes
// down the worker that owns the sensor.
type InitError struct {
	Sensor string
	Err    error
}

func (e *InitError) Error() string { return fmt.Sprintf("%s: init: %v", e.Sensor, e.Err) }

func (e *InitError) Unwrap() error { return e.Err }

// SensorStats counts reads since the worker started.
type SensorStats struct {
	Reads    uint64
	Failures uint64
}

// Sensor polls one driver and publishes every successful reading into its
// slot, then raises the readiness signal.
type Sensor[T any] struct {
	name     string
	driver   sensor.Driver[T]
	slot     *shared.Slot[T]
	ready    *shared.Readiness
	stop     shared.StopSource
	interval time.Duration
	log      zerolog.Logger

	state    atomic.Int32
	reads    atomic.Uint64
	failures atomic.Uint64
}

func NewSensor[T any](name string, d sensor.Driver[T], slot *shared.Slot[T], ready *shared.Readiness, stop shared.StopSource, interval time.Duration) *Sensor[T] {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Sensor[T]{
		name:     name,
		driver:   d,
		slot:     slot,
		ready:    ready,
		stop:     stop,
		interval: interval,
		log:      log.With().Str("sensor", name).Logger(),
	}
}

func (w *Sensor[T]) Name() string { return w.name }

func (w *Sensor[T]) State() State { return State(w.state.Load()) }

func (w *Sensor[T]) Stats() SensorStats {
	return SensorStats{Reads: w.reads.Load(), Failures: w.failures.Load()}
}

// Run drives the sensor from init to close. It returns an *InitError when
// the driver cannot be initialized, nil after a normal stop. The driver is
// closed exactly once on every path.
func (w *Sensor[T]) Run() error {
	w.log.Debug().Msg("begin of sensor worker")
	defer func() { w.log.Debug().Msg("end of sensor worker") }()

	if err := w.driver.Init(); err != nil {
		w.log.Warn().Err(err).Msg("sensor init failed, worker disabled")
		w.close()
		return &InitError{Sensor: w.name, Err: err}
	}
	w.log.Debug().Msg("sensor initialized")
	w.setState(Running)

	for w.pollOnce() {
		if !w.sleep() {
			break
		}
	}

	w.setState(Draining)
	w.close()
	w.log.Debug().
		Uint64("reads", w.reads.Load()).
		Uint64("failures", w.failures.Load()).
		Msg("sensor closed")
	return nil
}

// pollOnce does one read-publish-notify step. It returns false when stop has
// been requested.
func (w *Sensor[T]) pollOnce() bool {
	if w.stop.ShouldStop() {
		return false
	}
	v, err := w.driver.Read()
	if err != nil {
		w.failures.Add(1)
		w.log.Error().Err(err).Msg("sensor read failed")
		return true
	}
	w.slot.Publish(v)
	w.reads.Add(1)
	w.ready.Notify()
	return true
}

// sleep waits one poll interval. It returns false if stop arrived first.
func (w *Sensor[T]) sleep() bool {
	t := time.NewTimer(w.interval)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-w.stop.Done():
		return false
	}
}

func (w *Sensor[T]) close() {
	w.log.Debug().Msg("closing sensor")
	if err := w.driver.Close(); err != nil {
		w.log.Warn().Err(err).Msg("sensor close failed")
	}
	w.setState(Closed)
}

func (w *Sensor[T]) setState(s State) { w.state.Store(int32(s)) }
