package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type triple struct {
	X, Y, Z float64
}

func TestSlotEmptyUntilPublish(t *testing.T) {
	s := NewSlot[triple]()
	v, ok := s.Snapshot()
	assert.False(t, ok)
	assert.Equal(t, triple{}, v)
	assert.Equal(t, uint64(0), s.Seq())

	s.Publish(triple{1, 2, 3})
	v, ok = s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, triple{1, 2, 3}, v)
	assert.Equal(t, uint64(1), s.Seq())
}

func TestSlotLatestValueWins(t *testing.T) {
	s := NewSlot[int]()
	for i := 1; i <= 5; i++ {
		s.Publish(i)
	}
	v, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, uint64(5), s.Seq())
}

// Every published value has X == Y == Z, so a torn read would show up as a
// mix of fields.
func TestSlotSnapshotNeverTorn(t *testing.T) {
	s := NewSlot[triple]()
	const n = 20000

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= n; i++ {
			f := float64(i)
			s.Publish(triple{f, f, f})
		}
	}()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0.0
			for {
				select {
				case <-done:
					return
				default:
				}
				v, ok := s.Snapshot()
				if !ok {
					continue
				}
				if v.X != v.Y || v.Y != v.Z {
					t.Errorf("torn snapshot: %+v", v)
					return
				}
				if v.X < last {
					t.Errorf("snapshot went backwards: %v after %v", v.X, last)
					return
				}
				last = v.X
			}
		}()
	}
	<-done
	wg.Wait()

	v, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, triple{n, n, n}, v)
}
