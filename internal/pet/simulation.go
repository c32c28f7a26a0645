package pet

import (
	"math"
	"slices"
	"time"
)

// State снимок состояния питомца. Все мутаторы принимают и возвращают State по значению,
// исходный снимок никогда не изменяется.
type State struct {
	Name            string
	Health          int
	Happiness       int
	Hunger          int
	Alive           bool
	LastFed         time.Time
	LastInteraction time.Time
	// DecayedAt момент, до которого снижение показателей уже учтено в снимке
	DecayedAt   time.Time
	Outfit      string
	Accessories []string
	TimesFed    int
}

// Food описывает эффект еды. HappinessBoost == nil означает значение по умолчанию.
type Food struct {
	ID             string
	HealthBoost    int
	HungerBoost    int
	HappinessBoost *int
}

// happiness возвращает прибавку к счастью с учетом значения по умолчанию
func (f Food) happiness() int {
	if f.HappinessBoost == nil {
		return DefaultHappinessBoost
	}
	return *f.HappinessBoost
}

// New создает нового здорового питомца
func New(name string, now time.Time) State {
	if name == "" {
		name = DefaultName
	}

	return State{
		Name:            name,
		Health:          InitialStat,
		Happiness:       InitialStat,
		Hunger:          InitialStat,
		Alive:           true,
		LastFed:         now,
		LastInteraction: now,
		Accessories:     []string{},
	}
}

// Feed кормит питомца. available - количество единиц этой еды в инвентаре.
// Возвращает false и неизмененное состояние, если питомец мертв или еды нет.
func Feed(s State, food Food, available int, now time.Time) (State, bool) {
	if !s.Alive || available < 1 {
		return s, false
	}

	s.Health = clamp(s.Health + food.HealthBoost)
	s.Hunger = clamp(s.Hunger + food.HungerBoost)
	s.Happiness = clamp(s.Happiness + food.happiness())
	s.LastFed = now
	s.TimesFed++

	return deriveAlive(s), true
}

// Interact гладит питомца
func Interact(s State, now time.Time) (State, bool) {
	if !s.Alive {
		return s, false
	}

	s.Happiness = clamp(s.Happiness + InteractHappinessBoost)
	s.LastInteraction = now

	return deriveAlive(s), true
}

// Decay применяет снижение показателей за время с последнего взаимодействия.
// Для мертвого питомца ничего не делает.
func Decay(s State, now time.Time) State {
	if !s.Alive {
		return s
	}

	hours := now.Sub(s.decayAnchor()).Hours()
	if hours <= 0 {
		return s
	}

	s.Hunger = clamp(s.Hunger - int(math.Floor(hours*HungerDecayPerHour)))
	s.Happiness = clamp(s.Happiness - int(math.Floor(hours*HappinessDecayPerHour)))
	s.Health = clamp(s.Health - lowStatPenalty(s))

	return deriveAlive(s)
}

// Settle применяет снижение по целым часам, прошедшим с последнего взаимодействия,
// и фиксирует момент, до которого оно учтено. Штраф к здоровью начисляется не чаще
// одного раза за час, а итог не зависит от того, как часто вызывается Settle.
func Settle(s State, now time.Time) State {
	if !s.Alive {
		return s
	}

	origin := s.LastInteraction
	from := wholeHours(s.decayAnchor().Sub(origin))
	to := wholeHours(now.Sub(origin))
	if to <= from {
		return s
	}

	for hour := from + 1; hour <= to && s.Alive; hour++ {
		s.Hunger = clamp(s.Hunger - hourlyStep(hour, HungerDecayPerHour))
		s.Happiness = clamp(s.Happiness - hourlyStep(hour, HappinessDecayPerHour))
		s.Health = clamp(s.Health - lowStatPenalty(s))
		s = deriveAlive(s)
	}
	s.DecayedAt = origin.Add(time.Duration(to) * time.Hour)

	return s
}

// Sicken применяет последствия срыва
func Sicken(s State) State {
	s.Health = clamp(s.Health - SickHealthPenalty)
	s.Happiness = clamp(s.Happiness - SickHappinessPenalty)
	return deriveAlive(s)
}

// Revive возрождает мертвого питомца с пониженными показателями
func Revive(s State, now time.Time) (State, bool) {
	if s.Alive {
		return s, false
	}

	s.Health = ReviveStat
	s.Happiness = ReviveStat
	s.Hunger = ReviveStat
	s.Alive = true
	// Отсчет снижения начинается заново, иначе питомец сразу умрет снова
	s.LastInteraction = now
	s.DecayedAt = now

	return s, true
}

// SetOutfit надевает наряд. Пустая строка снимает наряд.
func SetOutfit(s State, outfit string) State {
	s.Outfit = outfit
	return s
}

// AddAccessory добавляет аксессуар, если его еще нет
func AddAccessory(s State, accessory string) (State, bool) {
	if accessory == "" || slices.Contains(s.Accessories, accessory) {
		return s, false
	}

	s.Accessories = append(slices.Clone(s.Accessories), accessory)
	return s, true
}

// RemoveAccessory снимает аксессуар
func RemoveAccessory(s State, accessory string) (State, bool) {
	idx := slices.Index(s.Accessories, accessory)
	if idx < 0 {
		return s, false
	}

	s.Accessories = slices.Delete(slices.Clone(s.Accessories), idx, idx+1)
	return s, true
}

// decayAnchor возвращает момент, от которого считается снижение
func (s State) decayAnchor() time.Time {
	if s.DecayedAt.After(s.LastInteraction) {
		return s.DecayedAt
	}
	return s.LastInteraction
}

// lowStatPenalty штраф к здоровью за низкие сытость и счастье
func lowStatPenalty(s State) int {
	penalty := 0
	if s.Hunger < LowStatThreshold {
		penalty += HungerHealthPenalty
	}
	if s.Happiness < LowStatThreshold {
		penalty += HappinessHealthPenalty
	}
	return penalty
}

// hourlyStep снижение за hour-й час: разность накопленных снижений, чтобы дробная часть не терялась
func hourlyStep(hour int, perHour float64) int {
	return int(math.Floor(float64(hour)*perHour)) - int(math.Floor(float64(hour-1)*perHour))
}

func wholeHours(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Hour)
}

// deriveAlive выводит флаг жизни из здоровья
func deriveAlive(s State) State {
	s.Alive = s.Health > 0
	return s
}

func clamp(v int) int {
	return max(MinStat, min(MaxStat, v))
}
