package sensor

import (
	"math/rand"
	"sync"
	"time"
)

// FakeAccelerometer simulates a board lying flat: about 1 g on Z plus noise.
type FakeAccelerometer struct {
	mu     sync.Mutex
	inited bool
	noise  float64
}

func NewFakeAccelerometer() *FakeAccelerometer {
	return &FakeAccelerometer{noise: 0.05}
}

func (f *FakeAccelerometer) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = true
	return nil
}

func (f *FakeAccelerometer) Read() (Acceleration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.inited {
		return Acceleration{}, ErrNotInitialized
	}
	jitter := func() float64 { return (rand.Float64()*2 - 1) * f.noise }
	return Acceleration{X: jitter(), Y: jitter(), Z: 1 + jitter(), Timestamp: time.Now()}, nil
}

func (f *FakeAccelerometer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = false
	return nil
}

// FakeColor simulates a color sensor pointed at a slowly random surface.
type FakeColor struct {
	mu     sync.Mutex
	inited bool
}

func NewFakeColor() *FakeColor { return &FakeColor{} }

func (f *FakeColor) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = true
	return nil
}

func (f *FakeColor) Read() (Color, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.inited {
		return Color{}, ErrNotInitialized
	}
	c := uint16(1000 + rand.Intn(200))
	r := uint16(rand.Intn(int(c)))
	g := uint16(rand.Intn(int(c)))
	b := uint16(rand.Intn(int(c)))
	out := clearCorrected(c, r, g, b)
	out.Timestamp = time.Now()
	return out, nil
}

func (f *FakeColor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = false
	return nil
}
