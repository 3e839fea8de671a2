package worker

import (
	"errors"
	"sync"

	"github.com/ericogr/accel-color-monitor/pkg/output"
)

type step[T any] struct {
	v   T
	err error
}

// scriptDriver plays back a fixed sequence of reads; after the script runs
// out it keeps returning the last step.
type scriptDriver[T any] struct {
	mu      sync.Mutex
	initErr error
	steps   []step[T]
	pos     int
	inits   int
	reads   int
	closes  int
}

func (d *scriptDriver[T]) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inits++
	return d.initErr
}

func (d *scriptDriver[T]) Read() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	if len(d.steps) == 0 {
		var zero T
		return zero, errors.New("no script")
	}
	s := d.steps[d.pos]
	if d.pos < len(d.steps)-1 {
		d.pos++
	}
	return s.v, s.err
}

func (d *scriptDriver[T]) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

func (d *scriptDriver[T]) counts() (inits, reads, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inits, d.reads, d.closes
}

type recordingSink struct {
	mu     sync.Mutex
	frames []output.Frame
	err    error
}

func (s *recordingSink) Render(f output.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) snapshot() []output.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]output.Frame(nil), s.frames...)
}

func (s *recordingSink) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
