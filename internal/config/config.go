package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pwmledctl/internal/mapping"
)

// Backend kinds.
const (
	BackendDevice = "device"
	BackendSysfs  = "sysfs"
	BackendGPIO   = "gpio"
)

// Paths exposed by the pwm_led_controller kernel module.
const (
	DefaultDevicePath = "/dev/pwm_led_controller"
	DefaultSysfsBase  = "/sys/kernel/pwm_led_controller"
)

// DefaultInterval is the pause between control loop iterations.
const DefaultInterval = 500 * time.Millisecond

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Mapping MappingConfig `yaml:"mapping"`
	Loop    LoopConfig    `yaml:"loop"`
	Log     LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	// Kind selects how duty cycles reach the LEDs: device, sysfs or gpio.
	Kind       string     `yaml:"kind"`
	DevicePath string     `yaml:"device_path"`
	SysfsBase  string     `yaml:"sysfs_base"`
	GPIO       GPIOConfig `yaml:"gpio"`
}

// GPIOConfig describes direct line access through the GPIO character device.
// Line numbers are chip offsets (BCM numbering on a Raspberry Pi).
type GPIOConfig struct {
	Chip        string `yaml:"chip"`
	LEDLines    []int  `yaml:"led_lines"`
	ButtonLines []int  `yaml:"button_lines"`
	// Debounce is applied to button edges. Zero disables it.
	Debounce time.Duration `yaml:"debounce"`
}

type MappingConfig struct {
	// Pointers so an explicit 0 is distinguishable from "unset".
	MinSpeed *uint64 `yaml:"min_speed"`
	MaxSpeed *uint64 `yaml:"max_speed"`
}

// Thresholds returns the mapping thresholds. Call after DefaultAndValidate.
func (m MappingConfig) Thresholds() mapping.Thresholds {
	th := mapping.Default
	if m.MinSpeed != nil {
		th.MinSpeed = *m.MinSpeed
	}
	if m.MaxSpeed != nil {
		th.MaxSpeed = *m.MaxSpeed
	}
	return th
}

type LoopConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file and applies defaults. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return Config{}, fmt.Errorf("config contains unknown fields: %s", stripLinePrefixes(te.Errors))
		}
		return Config{}, err
	}

	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func stripLinePrefixes(errs []string) string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if strings.HasPrefix(e, "line ") {
			if i := strings.Index(e, ": "); i >= 0 {
				e = e[i+2:]
			}
		}
		out = append(out, e)
	}
	return strings.Join(out, "; ")
}

// DefaultAndValidate fills unset fields with the reference defaults and
// rejects inconsistent values. A zero Config becomes the device backend on
// /dev/pwm_led_controller polled every 500ms.
func DefaultAndValidate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	b := &cfg.Backend
	b.Kind = strings.ToLower(strings.TrimSpace(b.Kind))
	if b.Kind == "" {
		b.Kind = BackendDevice
	}
	switch b.Kind {
	case BackendDevice, BackendSysfs, BackendGPIO:
	default:
		return fmt.Errorf("backend.kind must be one of device, sysfs, gpio (got %q)", b.Kind)
	}
	if strings.TrimSpace(b.DevicePath) == "" {
		b.DevicePath = DefaultDevicePath
	}
	if strings.TrimSpace(b.SysfsBase) == "" {
		b.SysfsBase = DefaultSysfsBase
	}

	g := &b.GPIO
	if strings.TrimSpace(g.Chip) == "" {
		g.Chip = "gpiochip0"
	}
	// Pin assignment of the reference board.
	if len(g.LEDLines) == 0 {
		g.LEDLines = []int{17, 27, 22}
	}
	if len(g.ButtonLines) == 0 {
		g.ButtonLines = []int{23, 24}
	}
	if b.Kind == BackendGPIO {
		if len(g.LEDLines) != 3 {
			return fmt.Errorf("backend.gpio.led_lines must list exactly 3 lines")
		}
		if len(g.ButtonLines) != 2 {
			return fmt.Errorf("backend.gpio.button_lines must list exactly 2 lines")
		}
		seen := map[int]bool{}
		for _, l := range append(append([]int{}, g.LEDLines...), g.ButtonLines...) {
			if l < 0 {
				return fmt.Errorf("backend.gpio lines must be >= 0")
			}
			if seen[l] {
				return fmt.Errorf("backend.gpio line %d is assigned twice", l)
			}
			seen[l] = true
		}
		if g.Debounce < 0 {
			return fmt.Errorf("backend.gpio.debounce must be >= 0")
		}
	}

	if cfg.Mapping.MinSpeed == nil {
		v := mapping.Default.MinSpeed
		cfg.Mapping.MinSpeed = &v
	}
	if cfg.Mapping.MaxSpeed == nil {
		v := mapping.Default.MaxSpeed
		cfg.Mapping.MaxSpeed = &v
	}
	if cfg.Mapping.Thresholds().Validate() != nil {
		return fmt.Errorf("mapping.min_speed must be < mapping.max_speed")
	}

	if cfg.Loop.Interval < 0 {
		return fmt.Errorf("loop.interval must be > 0")
	}
	if cfg.Loop.Interval == 0 {
		cfg.Loop.Interval = DefaultInterval
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}

	return nil
}
