// Package output renders snapshots of the latest sensor readings.
package output

import "github.com/ericogr/accel-color-monitor/pkg/sensor"

// Frame is one consistent view of both sensor slots. A reading whose Has
// flag is false has not been published yet and must be drawn as a
// placeholder.
type Frame struct {
	Acceleration    sensor.Acceleration
	HasAcceleration bool
	Color           sensor.Color
	HasColor        bool
}

// Sink draws frames. Render is only called from the display goroutine and
// must not block indefinitely.
type Sink interface {
	Render(Frame) error
	Close() error
}

// Placeholder is drawn in place of a value that has not been read yet.
const Placeholder = "--"
