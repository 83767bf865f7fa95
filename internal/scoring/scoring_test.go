package scoring

import (
	"testing"
	"time"

	"chorewheel/internal/model"
)

func TestComputePoints(t *testing.T) {
	tests := []struct {
		name   string
		weight int
		freq   model.Frequency
		onTime bool
		streak int
		want   int
	}{
		{"daily base, late, no streak", 3, model.FreqDaily, false, 0, 15},
		{"weekly with both bonuses", 3, model.FreqWeekly, true, 3, 39},
		{"weekly on time only", 3, model.FreqWeekly, true, 0, 36},
		{"weekly streak only", 3, model.FreqWeekly, false, 5, 33},
		{"streak below threshold ignored", 3, model.FreqWeekly, true, 2, 36},
		{"biweekly bonus", 1, model.FreqBiweekly, true, 0, 18},
		{"half rounds up", 1, model.FreqDaily, true, 3, 7}, // 5 + 1 + 0.5
		{"monthly heavy", 5, model.FreqMonthly, true, 3, 130},
		{"once behaves like weekly multiplier", 2, model.FreqOnce, false, 0, 20},
		{"minimum daily", 1, model.FreqDaily, false, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePoints(tt.weight, tt.freq, tt.onTime, tt.streak)
			if got != tt.want {
				t.Errorf("ComputePoints(%d, %s, %v, %d) = %d, want %d",
					tt.weight, tt.freq, tt.onTime, tt.streak, got, tt.want)
			}
		})
	}
}

func TestComputePointsDeterministicNonNegative(t *testing.T) {
	freqs := []model.Frequency{
		model.FreqDaily, model.FreqWeekly, model.FreqBiweekly, model.FreqMonthly, model.FreqOnce,
	}
	for weight := 1; weight <= 5; weight++ {
		for _, freq := range freqs {
			for _, onTime := range []bool{false, true} {
				for _, streak := range []int{0, 2, 3, 10} {
					a := ComputePoints(weight, freq, onTime, streak)
					b := ComputePoints(weight, freq, onTime, streak)
					if a != b {
						t.Fatalf("non-deterministic result for (%d, %s, %v, %d)", weight, freq, onTime, streak)
					}
					if a < 0 {
						t.Fatalf("negative points for (%d, %s, %v, %d)", weight, freq, onTime, streak)
					}
				}
			}
			// Spec property: late daily completion with no streak is the bare base.
			if got, want := ComputePoints(weight, model.FreqDaily, false, 0), weight*5; got != want {
				t.Errorf("daily base for weight %d = %d, want %d", weight, got, want)
			}
		}
	}
}

func TestBonusesAdditiveNotCompounding(t *testing.T) {
	// 5 × 2 × 10 = 100 base. Compounding would give 132; additive gives 130.
	if got := ComputePoints(5, model.FreqMonthly, true, 3); got != 130 {
		t.Errorf("bonuses compounded: got %d, want 130", got)
	}
}

func TestXPForLevel(t *testing.T) {
	for level, want := range map[int]int{1: 100, 2: 200, 5: 500} {
		if got := XPForLevel(level); got != want {
			t.Errorf("XPForLevel(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct{ xp, want int }{
		{0, 1}, {99, 1}, {100, 2}, {250, 3}, {-5, 1},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	tests := []struct{ xp, level, want int }{
		{0, 1, 0},
		{50, 1, 50},
		{100, 1, 100},
		{150, 2, 50},
		{350, 2, 100}, // clamped
		{0, 2, 0},     // clamped
	}
	for _, tt := range tests {
		if got := LevelProgress(tt.xp, tt.level); got != tt.want {
			t.Errorf("LevelProgress(%d, %d) = %d, want %d", tt.xp, tt.level, got, tt.want)
		}
	}
}

func TestStreakDays(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return d
	}
	today := day("2026-03-10")

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{"no completions", nil, 0},
		{"only today", []time.Time{day("2026-03-10")}, 1},
		{"three consecutive", []time.Time{day("2026-03-10"), day("2026-03-09"), day("2026-03-08")}, 3},
		{"gap breaks streak", []time.Time{day("2026-03-10"), day("2026-03-08")}, 1},
		{"missing today means no streak", []time.Time{day("2026-03-09"), day("2026-03-08")}, 0},
		{"duplicates count once", []time.Time{day("2026-03-10"), day("2026-03-10"), day("2026-03-09")}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StreakDays(tt.completions, today); got != tt.want {
				t.Errorf("StreakDays = %d, want %d", got, tt.want)
			}
		})
	}
}
