package worker

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/ericogr/accel-color-monitor/pkg/output"
	"github.com/ericogr/accel-color-monitor/pkg/sensor"
	"github.com/ericogr/accel-color-monitor/pkg/shared"
)

// Display waits for new readings and renders a snapshot of both slots.
type Display struct {
	acc   *shared.Slot[sensor.Acceleration]
	color *shared.Slot[sensor.Color]
	ready *shared.Readiness
	stop  shared.StopSource
	sink  output.Sink

	renders  atomic.Uint64
	failures atomic.Uint64
}

func NewDisplay(acc *shared.Slot[sensor.Acceleration], color *shared.Slot[sensor.Color], ready *shared.Readiness, stop shared.StopSource, sink output.Sink) *Display {
	return &Display{acc: acc, color: color, ready: ready, stop: stop, sink: sink}
}

// Renders returns the number of successful renders.
func (d *Display) Renders() uint64 { return d.renders.Load() }

// Run renders until stop is requested. A failed render is logged and the
// loop goes on.
func (d *Display) Run() error {
	l := log.With().Str("worker", "display").Logger()
	l.Debug().Msg("begin of display worker")
	defer func() { l.Debug().Msg("end of display worker") }()

	for d.ready.Wait(d.stop) == shared.Ready {
		if err := d.sink.Render(d.Snapshot()); err != nil {
			d.failures.Add(1)
			l.Error().Err(err).Msg("render failed")
			continue
		}
		d.renders.Add(1)
	}
	return nil
}

// Snapshot copies both slots into a frame.
func (d *Display) Snapshot() output.Frame {
	var f output.Frame
	f.Acceleration, f.HasAcceleration = d.acc.Snapshot()
	f.Color, f.HasColor = d.color.Snapshot()
	return f
}
