package pressrate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMeter_AlternatingPresses(t *testing.T) {
	m := NewMeter()
	require.Equal(t, uint64(0), m.Speed())

	at := t0
	for i := 0; i < 10; i++ {
		btn := Button1
		if i%2 == 1 {
			btn = Button2
		}
		at = at.Add(500 * time.Millisecond)
		m.Press(btn, at)
	}

	assert.Equal(t, 500*time.Millisecond, m.AverageInterval())
	assert.Equal(t, uint64(2), m.Speed())
	assert.Equal(t, 10, m.Presses())
}

func TestMeter_RepeatedSameButtonIgnoredForRate(t *testing.T) {
	m := NewMeter()
	m.Press(Button1, t0.Add(100*time.Millisecond))
	m.Press(Button2, t0.Add(200*time.Millisecond))
	require.Equal(t, 100*time.Millisecond, m.AverageInterval())

	// Same button twice: counted as a press, but no interval is taken.
	m.Press(Button2, t0.Add(5*time.Second))
	assert.Equal(t, 100*time.Millisecond, m.AverageInterval())
	assert.Equal(t, uint64(10), m.Speed())
	assert.Equal(t, 3, m.Presses())
}

func TestMeter_FirstPressHasNoInterval(t *testing.T) {
	m := NewMeter()
	m.Press(Button2, t0.Add(time.Second))
	assert.Equal(t, time.Duration(0), m.AverageInterval())
	assert.Equal(t, uint64(0), m.Speed())

	// The first interval runs from the first press, not from construction.
	m.Press(Button1, t0.Add(1250*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, m.AverageInterval())
	assert.Equal(t, uint64(4), m.Speed())
}

func TestMeter_UnknownButtonIgnored(t *testing.T) {
	m := NewMeter()
	m.Press(0, t0)
	m.Press(3, t0)
	assert.Equal(t, 0, m.Presses())
}

func TestMeter_WindowCollapsesAboveLimit(t *testing.T) {
	m := NewMeter()
	at := t0
	btn := Button1
	for i := 0; i <= windowMax+1; i++ {
		at = at.Add(250 * time.Millisecond)
		m.Press(btn, at)
		if btn == Button1 {
			btn = Button2
		} else {
			btn = Button1
		}
	}

	m.mu.Lock()
	count, total := m.count, m.totalNS
	m.mu.Unlock()
	assert.Equal(t, uint64(windowKeep), count)
	assert.Equal(t, uint64(250*time.Millisecond)*windowKeep, total)
	assert.Equal(t, uint64(4), m.Speed())
}

func TestMeter_ConcurrentUse(t *testing.T) {
	m := NewMeter()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(btn int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.Press(btn, t0.Add(time.Duration(i)*time.Millisecond))
				_ = m.Speed()
			}
		}(g%2 + 1)
	}
	wg.Wait()
	assert.Equal(t, 400, m.Presses())
}
