package pressrate

import (
	"sync"
	"time"
)

// Buttons are numbered 1 and 2. Only presses that alternate between them
// contribute to the rate.
const (
	Button1 = 1
	Button2 = 2
)

const (
	// windowMax and windowKeep bound the running average so the accumulated
	// interval never overflows: past windowMax samples the history collapses
	// to windowKeep samples of the current average.
	windowMax  = 100
	windowKeep = 20
)

// Meter estimates a press rate from alternating presses of two buttons.
// Safe for concurrent use.
type Meter struct {
	mu sync.Mutex

	lastButton int
	lastAt     time.Time

	presses int
	count   uint64
	totalNS uint64
	avgNS   uint64
}

// NewMeter returns an empty meter. The first press only sets the reference
// point; intervals start with the first press of the other button.
func NewMeter() *Meter {
	return &Meter{}
}

// Press records a press of button at the given time. Unknown buttons are
// ignored.
func (m *Meter) Press(button int, at time.Time) {
	if button != Button1 && button != Button2 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastButton != 0 && m.lastButton != button {
		d := at.Sub(m.lastAt)
		if d < 0 {
			d = 0
		}
		m.totalNS += uint64(d)
		m.count++
		m.avgNS = m.totalNS / m.count
		m.totalNS = m.avgNS * m.count

		if m.count > windowMax {
			m.totalNS = m.avgNS * windowKeep
			m.count = windowKeep
		}
	}

	m.lastButton = button
	m.lastAt = at
	m.presses++
}

// Speed returns presses per second, truncated. It is 0 until the first
// alternating pair has been seen.
func (m *Meter) Speed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.avgNS == 0 {
		return 0
	}
	return uint64(time.Second) / m.avgNS
}

// Presses returns every accepted press, alternating or not.
func (m *Meter) Presses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presses
}

// AverageInterval returns the current mean interval between alternating
// presses.
func (m *Meter) AverageInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.avgNS)
}
