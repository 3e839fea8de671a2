package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/accel-color-monitor/pkg/output"
	"github.com/ericogr/accel-color-monitor/pkg/sensor"
	"github.com/ericogr/accel-color-monitor/pkg/shared"
	"github.com/ericogr/accel-color-monitor/pkg/stop"
)

type displayFixture struct {
	acc   *shared.Slot[sensor.Acceleration]
	color *shared.Slot[sensor.Color]
	ready *shared.Readiness
	stop  *stop.Controller
	sink  *recordingSink
	d     *Display
}

func newDisplayFixture() *displayFixture {
	f := &displayFixture{
		acc:   shared.NewSlot[sensor.Acceleration](),
		color: shared.NewSlot[sensor.Color](),
		ready: shared.NewReadiness(),
		stop:  stop.New(),
		sink:  &recordingSink{},
	}
	f.d = NewDisplay(f.acc, f.color, f.ready, f.stop, f.sink)
	return f
}

func (f *displayFixture) waitFrames(t *testing.T, n int) []output.Frame {
	t.Helper()
	require.Eventually(t, func() bool { return len(f.sink.snapshot()) >= n }, time.Second, time.Millisecond)
	return f.sink.snapshot()
}

func TestDisplayRendersPlaceholdersThenAcceleration(t *testing.T) {
	f := newDisplayFixture()
	assert.Equal(t, output.Frame{}, f.d.Snapshot())

	done := runAsync(f.d)

	f.ready.Notify()
	frames := f.waitFrames(t, 1)
	assert.False(t, frames[0].HasAcceleration)
	assert.False(t, frames[0].HasColor)

	want := sensor.Acceleration{X: 0.1, Y: 0.2, Z: 0.98}
	f.acc.Publish(want)
	f.ready.Notify()
	frames = f.waitFrames(t, 2)
	assert.True(t, frames[1].HasAcceleration)
	assert.Equal(t, want, frames[1].Acceleration)
	assert.False(t, frames[1].HasColor, "color has not been read yet")

	f.stop.RequestStop()
	require.NoError(t, <-done)
	assert.Equal(t, uint64(2), f.d.Renders())
}

func TestDisplayUnblocksOnStop(t *testing.T) {
	f := newDisplayFixture()
	done := runAsync(f.d)

	// give Run time to park in the readiness wait
	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	f.stop.RequestStop()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("display worker hung after stop")
	}
	assert.Empty(t, f.sink.snapshot())
}

func TestDisplayCoalescesNotifications(t *testing.T) {
	f := newDisplayFixture()
	f.color.Publish(sensor.Color{R: 10, G: 20, B: 30})
	for i := 0; i < 5; i++ {
		f.ready.Notify()
	}

	done := runAsync(f.d)
	frames := f.waitFrames(t, 1)
	// no more notifications are pending, so no second frame shows up
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, f.sink.snapshot(), 1)
	assert.True(t, frames[0].HasColor)

	f.stop.RequestStop()
	require.NoError(t, <-done)
}

func TestDisplaySurvivesRenderError(t *testing.T) {
	f := newDisplayFixture()
	f.sink.setErr(errors.New("tty gone"))
	done := runAsync(f.d)

	f.ready.Notify()
	require.Eventually(t, func() bool { return f.d.failures.Load() == 1 }, time.Second, time.Millisecond)

	f.sink.setErr(nil)
	f.ready.Notify()
	f.waitFrames(t, 1)

	f.stop.RequestStop()
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), f.d.Renders())
}

func TestSensorsFeedDisplay(t *testing.T) {
	f := newDisplayFixture()
	accDriver := &scriptDriver[sensor.Acceleration]{steps: []step[sensor.Acceleration]{{v: sensor.Acceleration{Z: 1}}}}
	colDriver := &scriptDriver[sensor.Color]{initErr: errors.New("absent")}

	accW := NewSensor[sensor.Acceleration]("accelerometer", accDriver, f.acc, f.ready, f.stop, 5*time.Millisecond)
	colW := NewSensor[sensor.Color]("color", colDriver, f.color, f.ready, f.stop, 5*time.Millisecond)

	displayDone := runAsync(f.d)
	accDone := runAsync(accW)
	colDone := runAsync(colW)

	var initErr *InitError
	require.True(t, errors.As(<-colDone, &initErr))

	frames := f.waitFrames(t, 3)
	for _, fr := range frames {
		assert.True(t, fr.HasAcceleration)
		assert.False(t, fr.HasColor)
	}

	f.stop.RequestStop()
	require.NoError(t, <-accDone)
	require.NoError(t, <-displayDone)
}
