package model

// Level selects a container's capacity: one extra row of nine per step.
type Level int

const (
	LevelSmall Level = iota
	LevelMedium
	LevelLarge
	LevelHuge

	MaxLevel = LevelHuge

	RowWidth = 9
)

var levelNames = [...]string{"Small", "Medium", "Large", "Huge"}

func (l Level) Valid() bool { return l >= LevelSmall && l <= MaxLevel }

// Capacity returns the slot count; unknown levels get the small size.
func (l Level) Capacity() int {
	if !l.Valid() {
		return 3 * RowWidth
	}
	return (3 + int(l)) * RowWidth
}

func (l Level) Rows() int { return l.Capacity() / RowWidth }

func (l Level) Name() string {
	if !l.Valid() {
		return levelNames[LevelSmall]
	}
	return levelNames[l]
}

func CapacityForLevel(level int) int { return Level(level).Capacity() }
func LevelName(level int) string     { return Level(level).Name() }

func ClampLevel(level int) Level {
	switch {
	case level < int(LevelSmall):
		return LevelSmall
	case level > int(MaxLevel):
		return MaxLevel
	default:
		return Level(level)
	}
}
