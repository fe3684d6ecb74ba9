//go:build linux

package backend

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"

	"pwmledctl/internal/config"
	"pwmledctl/internal/mapping"
	"pwmledctl/internal/pressrate"
)

const gpioConsumer = "pwmledctl"

// outputLines is the part of *gpiocdev.Lines the GPIO backend drives.
type outputLines interface {
	SetValues(values []int) error
	Close() error
}

// GPIO drives the LEDs and reads the buttons directly through the Linux GPIO
// character device, for boards without the kernel module loaded.
//
// Brightness levels are not reproduced. The lines are plain digital outputs
// with no on/off cycling, so any duty > 0 drives a line fully on and 0 drives
// it off. The idle LED1 duty of 10% therefore lights LED1 at full brightness.
// The press rate is measured from rising edges on the two button lines.
//
// Unlike the file backends this one holds its line requests until Close.
type GPIO struct {
	chip    *gpiocdev.Chip
	leds    outputLines
	buttons *gpiocdev.Lines

	// buttonOf maps a line offset to pressrate.Button1/Button2.
	buttonOf map[int]int
	meter    *pressrate.Meter
	log      zerolog.Logger
}

func NewGPIO(cfg config.GPIOConfig, log zerolog.Logger) (*GPIO, error) {
	if len(cfg.LEDLines) != 3 || len(cfg.ButtonLines) != 2 {
		return nil, fmt.Errorf("backend: gpio needs 3 led lines and 2 button lines")
	}

	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("backend: open gpio chip %s: %w", cfg.Chip, err)
	}

	g := newGPIO(cfg.ButtonLines, log)
	g.chip = chip

	leds, err := chip.RequestLines(cfg.LEDLines, gpiocdev.AsOutput(0, 0, 0), gpiocdev.WithConsumer(gpioConsumer))
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("backend: request led lines %v: %w", cfg.LEDLines, err)
	}
	g.leds = leds

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(g.onEdge),
		gpiocdev.WithConsumer(gpioConsumer),
	}
	if cfg.Debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(cfg.Debounce))
	}
	buttons, err := chip.RequestLines(cfg.ButtonLines, opts...)
	if err != nil {
		_ = leds.Close()
		_ = chip.Close()
		return nil, fmt.Errorf("backend: request button lines %v: %w", cfg.ButtonLines, err)
	}
	g.buttons = buttons
	return g, nil
}

func newGPIO(buttonLines []int, log zerolog.Logger) *GPIO {
	// Edge timestamps are durations on the kernel's monotonic clock; anchor
	// them to the zero time so intervals stay exact.
	return &GPIO{
		buttonOf: map[int]int{
			buttonLines[0]: pressrate.Button1,
			buttonLines[1]: pressrate.Button2,
		},
		meter: pressrate.NewMeter(),
		log:   log.With().Str("backend", "gpio").Logger(),
	}
}

func (g *GPIO) onEdge(evt gpiocdev.LineEvent) {
	btn, ok := g.buttonOf[evt.Offset]
	if !ok {
		return
	}
	g.meter.Press(btn, time.Time{}.Add(evt.Timestamp))
	g.log.Trace().Int("button", btn).Dur("ts", evt.Timestamp).Msg("press")
}

// Meter exposes the press-rate estimator fed by the button lines.
func (g *GPIO) Meter() *pressrate.Meter { return g.meter }

func (g *GPIO) Sample() (uint64, error) {
	return g.meter.Speed(), nil
}

// Commit drives each LED line high when its duty is above 0 and low otherwise.
func (g *GPIO) Commit(d mapping.Duty) error {
	if g == nil || g.leds == nil {
		return fmt.Errorf("backend: gpio not initialized")
	}
	vals := make([]int, 0, 3)
	for _, v := range d.Values() {
		on := 0
		if v > 0 {
			on = 1
		}
		vals = append(vals, on)
	}
	if err := g.leds.SetValues(vals); err != nil {
		return fmt.Errorf("backend: set led lines: %w", err)
	}
	return nil
}

// Close switches the LEDs off and releases all lines.
func (g *GPIO) Close() error {
	if g == nil {
		return nil
	}
	var err error
	if g.leds != nil {
		_ = g.leds.SetValues([]int{0, 0, 0})
		err = g.leds.Close()
		g.leds = nil
	}
	if g.buttons != nil {
		_ = g.buttons.Close()
		g.buttons = nil
	}
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
