package progress

import (
	"testing"
	"time"
)

func TestStreakDays(t *testing.T) {
	quit := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		quit     *time.Time
		now      time.Time
		expected int
	}{
		{"NoQuitDate", nil, quit, 0},
		{"SameInstant", &quit, quit, 0},
		{"AlmostOneDay", &quit, quit.Add(23*time.Hour + 59*time.Minute), 0},
		{"ThreeDaysFourHours", &quit, quit.Add(76 * time.Hour), 3},
		{"FutureQuitDate", &quit, quit.Add(-48 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StreakDays(tt.quit, tt.now); got != tt.expected {
				t.Errorf("Expected streak %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestStreakDays_Monotonic(t *testing.T) {
	quit := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Проверяем, что серия не уменьшается с течением времени
	prev := -1
	for h := -72; h <= 24*40; h += 7 {
		got := StreakDays(&quit, quit.Add(time.Duration(h)*time.Hour))
		if got < prev {
			t.Fatalf("Streak decreased at hour %d: %d < %d", h, got, prev)
		}
		prev = got
	}
}

func TestMoneySaved(t *testing.T) {
	if got := MoneySaved(10, 50); got != 500 {
		t.Errorf("Expected 500, got %v", got)
	}
	if got := MoneySaved(0, 50); got != 0 {
		t.Errorf("Expected 0 for empty streak, got %v", got)
	}
	if got := MoneySaved(7, 0); got != 0 {
		t.Errorf("Expected 0 without daily cost, got %v", got)
	}
}

func TestElapsedBreakdown(t *testing.T) {
	quit := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	t.Run("ThreeDaysFourHours", func(t *testing.T) {
		got := ElapsedBreakdown(&quit, quit.Add(3*24*time.Hour+4*time.Hour))
		want := Elapsed{Days: 3, Hours: 4}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("AllComponents", func(t *testing.T) {
		now := quit.Add(50*time.Hour + 59*time.Minute + 58*time.Second + 900*time.Millisecond)
		got := ElapsedBreakdown(&quit, now)
		want := Elapsed{Days: 2, Hours: 2, Minutes: 59, Seconds: 58}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("ClockSkew", func(t *testing.T) {
		got := ElapsedBreakdown(&quit, quit.Add(-time.Minute))
		if got != (Elapsed{}) {
			t.Errorf("Expected zero breakdown for future quit date, got %+v", got)
		}
	})

	t.Run("NoQuitDate", func(t *testing.T) {
		if got := ElapsedBreakdown(nil, quit); got != (Elapsed{}) {
			t.Errorf("Expected zero breakdown without quit date, got %+v", got)
		}
	})
}

func TestMilestones(t *testing.T) {
	quit := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got := Milestones(&quit, quit.Add(25*time.Hour))
	achieved := map[string]bool{}
	for _, m := range got {
		achieved[m.Key] = m.Achieved
	}

	for _, key := range []string{"health20min", "health8hours", "health24hours"} {
		if !achieved[key] {
			t.Errorf("Expected milestone %s to be achieved", key)
		}
	}
	if achieved["health48hours"] {
		t.Error("Milestone health48hours should not be achieved after 25 hours")
	}

	// Без даты отказа ничего не достигнуто
	for _, m := range Milestones(nil, quit) {
		if m.Achieved {
			t.Errorf("Milestone %s achieved without quit date", m.Key)
		}
	}
}

func TestSummarize(t *testing.T) {
	quit := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := quit.Add(15*24*time.Hour + 2*time.Hour)

	s := Summarize(&quit, 40, now)

	if s.StreakDays != 15 {
		t.Errorf("Expected streak 15, got %d", s.StreakDays)
	}
	if s.MoneySaved != 600 {
		t.Errorf("Expected money saved 600, got %v", s.MoneySaved)
	}
	if s.Elapsed.Hours != 2 {
		t.Errorf("Expected 2 hours in breakdown, got %d", s.Elapsed.Hours)
	}
	if s.MonthProgress != 50 {
		t.Errorf("Expected month progress 50, got %d", s.MonthProgress)
	}

	// Повторный вызов с теми же аргументами дает тот же результат
	again := Summarize(&quit, 40, now)
	if again.StreakDays != s.StreakDays || again.MoneySaved != s.MoneySaved || again.Elapsed != s.Elapsed {
		t.Error("Summarize is not deterministic for equal inputs")
	}
}
