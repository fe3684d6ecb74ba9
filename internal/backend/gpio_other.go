//go:build !linux

package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"pwmledctl/internal/config"
	"pwmledctl/internal/mapping"
	"pwmledctl/internal/pressrate"
)

// GPIO is only available on Linux.
type GPIO struct {
	meter *pressrate.Meter
}

func NewGPIO(cfg config.GPIOConfig, log zerolog.Logger) (*GPIO, error) {
	return nil, fmt.Errorf("backend: gpio unsupported on this platform")
}

func (g *GPIO) Meter() *pressrate.Meter { return g.meter }

func (g *GPIO) Sample() (uint64, error) {
	return 0, fmt.Errorf("backend: gpio unsupported")
}

func (g *GPIO) Commit(d mapping.Duty) error {
	return fmt.Errorf("backend: gpio unsupported")
}

func (g *GPIO) Close() error { return nil }
