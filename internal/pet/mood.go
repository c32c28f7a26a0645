package pet

// Mood настроение питомца, отображаемое клиентом
type Mood string

const (
	MoodDead    Mood = "dead"
	MoodSick    Mood = "sick"
	MoodLonely  Mood = "lonely"
	MoodHungry  Mood = "hungry"
	MoodHappy   Mood = "happy"
	MoodContent Mood = "content"
)

// MoodOf определяет настроение по текущим показателям.
// Порядок проверок важен: болезнь важнее одиночества, одиночество важнее голода.
func MoodOf(s State) Mood {
	switch {
	case !s.Alive:
		return MoodDead
	case s.Health < MoodLowThreshold:
		return MoodSick
	case s.Happiness < MoodLowThreshold:
		return MoodLonely
	case s.Hunger < MoodLowThreshold:
		return MoodHungry
	case s.Happiness > MoodHighThreshold && s.Health > MoodHighThreshold:
		return MoodHappy
	default:
		return MoodContent
	}
}
