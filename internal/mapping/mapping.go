package mapping

import "fmt"

// MaxDuty is the upper bound of every duty cycle channel, in percent.
const MaxDuty = 100

// Onset points (as a fraction of the active speed range) and ramp slopes for
// LED2 and LED3. LED1 ramps over the whole range.
const (
	led1Floor = 10
	led1Span  = 90.0

	led2Onset = 0.33
	led2Slope = 150.0

	led3Onset = 0.66
	led3Slope = 300.0
)

// Thresholds bound the speed domain over which duty cycles are interpolated.
// Speeds at or below MinSpeed and at or above MaxSpeed saturate.
type Thresholds struct {
	MinSpeed uint64
	MaxSpeed uint64
}

// Default matches the button press rates the controller hardware produces in
// practice (presses per second).
var Default = Thresholds{MinSpeed: 1, MaxSpeed: 10}

// Validate reports an error unless MinSpeed < MaxSpeed.
func (t Thresholds) Validate() error {
	if t.MinSpeed >= t.MaxSpeed {
		return fmt.Errorf("mapping: min_speed (%d) must be < max_speed (%d)", t.MinSpeed, t.MaxSpeed)
	}
	return nil
}

// Duty is one duty cycle per LED channel, each in [0, MaxDuty].
type Duty struct {
	LED1 uint8
	LED2 uint8
	LED3 uint8
}

func (d Duty) String() string {
	return fmt.Sprintf("L1=%d%% L2=%d%% L3=%d%%", d.LED1, d.LED2, d.LED3)
}

// Values returns the channels in LED order.
func (d Duty) Values() [3]uint8 {
	return [3]uint8{d.LED1, d.LED2, d.LED3}
}

var (
	idle = Duty{LED1: led1Floor}
	full = Duty{LED1: MaxDuty, LED2: MaxDuty, LED3: MaxDuty}
)

// Compute maps a press rate to LED duty cycles.
//
// LED1 ramps 10..100 across the whole range. LED2 and LED3 switch on once the
// speed passes 33% and 66% of the range respectively and each ramps toward
// saturation from there. The onset comparisons are strict, so a channel is 0
// exactly at its onset point and jumps just above it.
//
// Conversions truncate toward zero. Compute never fails; th is assumed valid.
func Compute(th Thresholds, speed uint64) Duty {
	if speed <= th.MinSpeed {
		return idle
	}
	if speed >= th.MaxSpeed {
		return full
	}

	span := th.MaxSpeed - th.MinSpeed
	pos := speed - th.MinSpeed
	pct := float64(pos) / float64(span)

	d := Duty{LED1: clampDuty(led1Floor + int64(led1Span*pct))}
	if pct > led2Onset {
		d.LED2 = clampDuty(int64((pct - led2Onset) * led2Slope))
	}
	if pct > led3Onset {
		d.LED3 = clampDuty(int64((pct - led3Onset) * led3Slope))
	}
	return d
}

func clampDuty(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > MaxDuty {
		return MaxDuty
	}
	return uint8(v)
}
