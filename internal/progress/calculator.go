package progress

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Elapsed содержит время с момента отказа, разложенное на компоненты
type Elapsed struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TotalHours возвращает полное количество часов без учета минут и секунд
func (e Elapsed) TotalHours() int {
	return e.Days*24 + e.Hours
}

// StreakDays возвращает количество полных дней без никотина.
// Если дата отказа не задана или находится в будущем, возвращает 0.
func StreakDays(quit *time.Time, now time.Time) int {
	if quit == nil || quit.IsZero() {
		return 0
	}

	diff := now.Sub(*quit)
	if diff <= 0 {
		return 0
	}

	return int(diff / day)
}

// MoneySaved возвращает сэкономленную сумму за streakDays дней
func MoneySaved(streakDays int, dailyCost float64) float64 {
	if streakDays <= 0 || dailyCost <= 0 {
		return 0
	}
	return float64(streakDays) * dailyCost
}

// ElapsedBreakdown раскладывает время с момента отказа на дни, часы, минуты и секунды.
// При отсутствии даты или если now раньше даты отказа возвращается нулевое значение.
func ElapsedBreakdown(quit *time.Time, now time.Time) Elapsed {
	if quit == nil || quit.IsZero() {
		return Elapsed{}
	}

	diff := now.Sub(*quit)
	if diff < 0 {
		return Elapsed{}
	}

	days := diff / day
	diff -= days * day

	hours := diff / time.Hour
	diff -= hours * time.Hour

	minutes := diff / time.Minute
	diff -= minutes * time.Minute

	return Elapsed{
		Days:    int(days),
		Hours:   int(hours),
		Minutes: int(minutes),
		Seconds: int(diff / time.Second),
	}
}

// Milestone описывает этап восстановления организма
type Milestone struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Hours    float64 `json:"hours"`
	Achieved bool    `json:"achieved"`
}

// healthMilestones отсортированы по возрастанию порога
var healthMilestones = []Milestone{
	{Key: "health20min", Label: "20min", Hours: 0.33},
	{Key: "health8hours", Label: "8h", Hours: 8},
	{Key: "health24hours", Label: "24h", Hours: 24},
	{Key: "health48hours", Label: "48h", Hours: 48},
	{Key: "health72hours", Label: "72h", Hours: 72},
	{Key: "health2weeks", Label: "2w", Hours: 336},
	{Key: "health1month", Label: "1m", Hours: 720},
	{Key: "health3months", Label: "3m", Hours: 2160},
}

// Milestones возвращает список этапов восстановления с отметкой о достижении.
// Как и в клиенте, учитываются только полные часы.
func Milestones(quit *time.Time, now time.Time) []Milestone {
	totalHours := float64(ElapsedBreakdown(quit, now).TotalHours())

	result := make([]Milestone, len(healthMilestones))
	for i, m := range healthMilestones {
		m.Achieved = quit != nil && totalHours >= m.Hours
		result[i] = m
	}
	return result
}

// Summary объединяет все производные показатели пользователя
type Summary struct {
	StreakDays int         `json:"streak_days"`
	MoneySaved float64     `json:"money_saved"`
	Elapsed    Elapsed     `json:"elapsed"`
	Milestones []Milestone `json:"milestones"`
	// MonthProgress процент пути до первого месяца, от 0 до 100
	MonthProgress int `json:"month_progress"`
}

// Summarize вычисляет все показатели по дате отказа и ежедневным расходам
func Summarize(quit *time.Time, dailyCost float64, now time.Time) Summary {
	streak := StreakDays(quit, now)

	return Summary{
		StreakDays:    streak,
		MoneySaved:    MoneySaved(streak, dailyCost),
		Elapsed:       ElapsedBreakdown(quit, now),
		Milestones:    Milestones(quit, now),
		MonthProgress: int(math.Min(100, math.Round(float64(streak)/30*100))),
	}
}
