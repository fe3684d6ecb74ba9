package mapping

import (
	"math"
	"testing"
)

func TestCompute_DefaultThresholds(t *testing.T) {
	cases := []struct {
		speed uint64
		want  Duty
	}{
		{0, Duty{10, 0, 0}},
		{1, Duty{10, 0, 0}},
		{2, Duty{20, 0, 0}},
		{4, Duty{40, 0, 0}},
		// 90*(4/9) is exactly 40.0 in float64, so LED1 lands on 50.
		{5, Duty{50, 17, 0}},
		{6, Duty{60, 33, 0}},
		{7, Duty{70, 50, 1}},
		{8, Duty{80, 67, 35}},
		{9, Duty{90, 83, 68}},
		{10, Duty{100, 100, 100}},
		{11, Duty{100, 100, 100}},
		{math.MaxUint64, Duty{100, 100, 100}},
	}
	for _, tc := range cases {
		if got := Compute(Default, tc.speed); got != tc.want {
			t.Fatalf("Compute(%d)=%+v want %+v", tc.speed, got, tc.want)
		}
	}
}

func TestCompute_OnsetIsStrict(t *testing.T) {
	th := Thresholds{MinSpeed: 0, MaxSpeed: 100}
	cases := []struct {
		speed uint64
		want  Duty
	}{
		{33, Duty{39, 0, 0}},
		{34, Duty{40, 1, 0}},
		{66, Duty{69, 49, 0}},
		{67, Duty{70, 51, 3}},
	}
	for _, tc := range cases {
		if got := Compute(th, tc.speed); got != tc.want {
			t.Fatalf("Compute(%d)=%+v want %+v", tc.speed, got, tc.want)
		}
	}
}

func TestCompute_BoundedAndMonotonic(t *testing.T) {
	for _, th := range []Thresholds{Default, {MinSpeed: 0, MaxSpeed: 1000}, {MinSpeed: 5, MaxSpeed: 6}} {
		var prev Duty
		for s := uint64(0); s <= th.MaxSpeed+5; s++ {
			d := Compute(th, s)
			for i, v := range d.Values() {
				if v > MaxDuty {
					t.Fatalf("th=%+v speed=%d channel %d=%d exceeds %d", th, s, i+1, v, MaxDuty)
				}
			}
			if s > 0 && d.LED1 < prev.LED1 {
				t.Fatalf("th=%+v LED1 decreased at speed %d: %d -> %d", th, s, prev.LED1, d.LED1)
			}
			prev = d
		}
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := Default.Validate(); err != nil {
		t.Fatalf("Default.Validate: %v", err)
	}
	if err := (Thresholds{MinSpeed: 10, MaxSpeed: 10}).Validate(); err == nil {
		t.Fatalf("expected error for min == max")
	}
	if err := (Thresholds{MinSpeed: 11, MaxSpeed: 10}).Validate(); err == nil {
		t.Fatalf("expected error for min > max")
	}
}

func TestDutyString(t *testing.T) {
	if got, want := (Duty{49, 17, 0}).String(), "L1=49% L2=17% L3=0%"; got != want {
		t.Fatalf("String()=%q want %q", got, want)
	}
}
