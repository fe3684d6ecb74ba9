package backend

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"pwmledctl/internal/config"
	"pwmledctl/internal/mapping"
)

// Backend samples the button press rate and commits LED duty cycles.
//
// Access failures (missing path, permission, short I/O) are returned as
// errors and never retried. Unparseable content is not an error: the sample
// reads as 0.
type Backend interface {
	Sample() (uint64, error)
	Commit(d mapping.Duty) error
	Close() error
}

// New builds the backend selected by cfg.Kind. cfg is expected to have been
// through config.DefaultAndValidate.
func New(cfg config.BackendConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Kind {
	case config.BackendDevice:
		return NewDevice(cfg.DevicePath, log), nil
	case config.BackendSysfs:
		return NewSysfs(cfg.SysfsBase, log), nil
	case config.BackendGPIO:
		g, err := NewGPIO(cfg.GPIO, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("backend: unknown kind %q", cfg.Kind)
	}
}

// fileBackend is implemented by backends that talk to files, so their paths
// can be checked up front.
type fileBackend interface {
	accessPaths() (read, write []string)
}

// Probe checks that the files behind b are readable (sample side) and
// writable (commit side). Backends that are not file based always pass.
func Probe(b Backend) error {
	fb, ok := b.(fileBackend)
	if !ok {
		return nil
	}
	read, write := fb.accessPaths()
	for _, p := range read {
		if err := checkReadable(p); err != nil {
			return fmt.Errorf("backend: probe: %w", err)
		}
	}
	for _, p := range write {
		if err := checkWritable(p); err != nil {
			return fmt.Errorf("backend: probe: %w", err)
		}
	}
	return nil
}

// writeValue writes value to an existing device or attribute file.
//
// O_WRONLY without O_TRUNC/O_CREATE: sysfs attributes can reject truncation
// at open() even when the mode bits allow writes, and a missing path must
// fail rather than create a regular file.
func writeValue(path string, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(value)
	cerr := f.Close()
	if werr != nil && cerr != nil {
		return errors.Join(werr, cerr)
	}
	if werr != nil {
		return werr
	}
	return cerr
}
