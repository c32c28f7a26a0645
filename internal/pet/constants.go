package pet

// Игровые константы питомца
const (
	DefaultName = "Nico"
	MaxStat     = 100
	MinStat     = 0
	InitialStat = 100
	ReviveStat  = 50

	// Изменения при действиях пользователя
	DefaultHappinessBoost  = 5
	InteractHappinessBoost = 15

	// Скорость снижения показателей (в час с момента последнего взаимодействия)
	HungerDecayPerHour    = 2.0
	HappinessDecayPerHour = 1.5

	// Штрафы к здоровью при низких показателях после снижения
	LowStatThreshold       = 20
	HungerHealthPenalty    = 5
	HappinessHealthPenalty = 3

	// Последствия срыва
	SickHealthPenalty    = 30
	SickHappinessPenalty = 40

	// Пороги для настроения
	MoodLowThreshold  = 30
	MoodHighThreshold = 80
)
