package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"pwmledctl/internal/mapping"
)

// Attribute names under the controller's kobject.
const (
	attrSpeed = "button_speed"
	attrLED1  = "led1_duty"
	attrLED2  = "led2_duty"
	attrLED3  = "led3_duty"
)

// Sysfs talks to the controller through one attribute file per value.
//
// Commit writes led1..led3 in order. The writes are independent: if one
// fails, the earlier ones stay applied.
type Sysfs struct {
	base string
	log  zerolog.Logger
}

// NewSysfs returns a Sysfs backend rooted at the attribute directory base.
func NewSysfs(base string, log zerolog.Logger) *Sysfs {
	return &Sysfs{base: base, log: log.With().Str("backend", "sysfs").Logger()}
}

func (s *Sysfs) Base() string { return s.base }

func (s *Sysfs) Sample() (uint64, error) {
	p := filepath.Join(s.base, attrSpeed)
	b, err := os.ReadFile(p)
	if err != nil {
		return 0, fmt.Errorf("backend: read %s: %w", attrSpeed, err)
	}
	v, ok := parseAttrSpeed(string(b))
	if !ok {
		s.log.Debug().Str("content", string(b)).Msg("unparseable speed, using 0")
	}
	return v, nil
}

func (s *Sysfs) Commit(duty mapping.Duty) error {
	for i, name := range [...]string{attrLED1, attrLED2, attrLED3} {
		v := duty.Values()[i]
		if err := writeValue(filepath.Join(s.base, name), strconv.FormatUint(uint64(v), 10)); err != nil {
			return fmt.Errorf("backend: write %s: %w", name, err)
		}
	}
	return nil
}

func (s *Sysfs) Close() error { return nil }

func (s *Sysfs) accessPaths() (read, write []string) {
	return []string{filepath.Join(s.base, attrSpeed)}, []string{
		filepath.Join(s.base, attrLED1),
		filepath.Join(s.base, attrLED2),
		filepath.Join(s.base, attrLED3),
	}
}
