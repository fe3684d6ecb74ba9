package backend

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"pwmledctl/internal/mapping"
)

// Device talks to the controller through its character device. Reading
// yields a status line with the current speed; writing "<d1> <d2> <d3>" sets
// all three duty cycles at once.
//
// The device is opened and closed on every call.
type Device struct {
	path string
	log  zerolog.Logger
}

// NewDevice returns a Device backed by the character device at path.
func NewDevice(path string, log zerolog.Logger) *Device {
	return &Device{path: path, log: log.With().Str("backend", "device").Logger()}
}

func (d *Device) Path() string { return d.path }

// Sample reads the status line and returns the speed it reports, or 0 if the
// line cannot be parsed.
func (d *Device) Sample() (uint64, error) {
	b, err := os.ReadFile(d.path)
	if err != nil {
		return 0, fmt.Errorf("backend: read %s: %w", d.path, err)
	}
	v, ok := parseDeviceSpeed(string(b))
	if !ok {
		d.log.Debug().Str("content", string(b)).Msg("unparseable speed, using 0")
	}
	return v, nil
}

// Commit writes all three duty cycles in one write.
func (d *Device) Commit(duty mapping.Duty) error {
	cmd := fmt.Sprintf("%d %d %d", duty.LED1, duty.LED2, duty.LED3)
	if err := writeValue(d.path, cmd); err != nil {
		return fmt.Errorf("backend: write %s: %w", d.path, err)
	}
	return nil
}

func (d *Device) Close() error { return nil }

func (d *Device) accessPaths() (read, write []string) {
	return []string{d.path}, []string{d.path}
}
