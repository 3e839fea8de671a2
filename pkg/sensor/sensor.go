package sensor

import "time"

// Acceleration is one accelerometer sample, in g.
type Acceleration struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp"`
}

// Color is one color sample. R, G and B are corrected by the clear channel
// and scaled to 0..255; Clear is the raw clear channel count.
type Color struct {
	R         uint8     `json:"r"`
	G         uint8     `json:"g"`
	B         uint8     `json:"b"`
	Clear     uint16    `json:"clear"`
	Timestamp time.Time `json:"timestamp"`
}

// Driver is a sensor that is initialized once, read repeatedly and closed
// once. All calls come from the goroutine that owns the driver.
type Driver[T any] interface {
	Init() error
	Read() (T, error)
	Close() error
}
