//go:build linux

package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-gpiocdev"

	"pwmledctl/internal/mapping"
)

type fakeLines struct {
	values [][]int
	err    error
	closed bool
}

func (f *fakeLines) SetValues(v []int) error {
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, append([]int(nil), v...))
	return nil
}

func (f *fakeLines) Close() error {
	f.closed = true
	return nil
}

func TestGPIO_EdgesDriveSample(t *testing.T) {
	g := newGPIO([]int{23, 24}, zerolog.Nop())

	ts := time.Second
	for i := 0; i < 6; i++ {
		off := 23
		if i%2 == 1 {
			off = 24
		}
		g.onEdge(gpiocdev.LineEvent{Offset: off, Timestamp: ts})
		ts += 200 * time.Millisecond
	}
	// Edges on lines that are not buttons are ignored.
	g.onEdge(gpiocdev.LineEvent{Offset: 17, Timestamp: ts})

	v, err := g.Sample()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	assert.Equal(t, 6, g.Meter().Presses())
}

func TestGPIO_CommitMapsDutyToLevels(t *testing.T) {
	g := newGPIO([]int{23, 24}, zerolog.Nop())
	leds := &fakeLines{}
	g.leds = leds

	require.NoError(t, g.Commit(mapping.Duty{LED1: 10, LED2: 0, LED3: 0}))
	require.NoError(t, g.Commit(mapping.Duty{LED1: 100, LED2: 1, LED3: 100}))
	assert.Equal(t, [][]int{{1, 0, 0}, {1, 1, 1}}, leds.values)

	require.NoError(t, g.Close())
	assert.True(t, leds.closed)
	assert.Equal(t, []int{0, 0, 0}, leds.values[len(leds.values)-1])

	assert.Error(t, g.Commit(mapping.Duty{}), "commit after close")
}

func TestGPIO_CommitDropsBrightnessLevels(t *testing.T) {
	g := newGPIO([]int{23, 24}, zerolog.Nop())
	leds := &fakeLines{}
	g.leds = leds

	for _, d := range []mapping.Duty{
		{LED1: 10, LED2: 1, LED3: 1},
		{LED1: 50, LED2: 17, LED3: 3},
		{LED1: 100, LED2: 100, LED3: 100},
	} {
		require.NoError(t, g.Commit(d))
	}
	require.Len(t, leds.values, 3)
	for i, v := range leds.values {
		assert.Equal(t, []int{1, 1, 1}, v, "commit %d", i)
	}
}

func TestGPIO_CommitError(t *testing.T) {
	g := newGPIO([]int{23, 24}, zerolog.Nop())
	boom := errors.New("boom")
	g.leds = &fakeLines{err: boom}
	assert.ErrorIs(t, g.Commit(mapping.Duty{LED1: 10}), boom)
}

func TestProbe_SkipsNonFileBackends(t *testing.T) {
	assert.NoError(t, Probe(newGPIO([]int{1, 2}, zerolog.Nop())))
}
