package permissions

// Level is a staff permission tier. Levels form a total order with index 0
// as the most privileged; comparison is by hierarchy index.
type Level int

const (
	HeadAdministration Level = iota
	SeniorAdministration
	Administration
	JuniorAdministration
	SeniorStaff
	Staff
	StaffInTraining
	Member

	levelCount
)

var levelNames = [levelCount]string{
	HeadAdministration:   "Head Administration",
	SeniorAdministration: "Senior Administration",
	Administration:       "Administration",
	JuniorAdministration: "Junior Administration",
	SeniorStaff:          "Senior Staff",
	Staff:                "Staff",
	StaffInTraining:      "Staff In Training",
	Member:               "Member",
}

// String returns the display name, which is also the literal role name used
// as the last-resort resolution source.
func (l Level) String() string {
	if !l.Valid() {
		return "Unknown"
	}
	return levelNames[l]
}

// Valid reports whether l is a defined level.
func (l Level) Valid() bool {
	return l >= HeadAdministration && l < levelCount
}

// AtLeast reports whether l is at least as privileged as required.
func (l Level) AtLeast(required Level) bool {
	if !l.Valid() || !required.Valid() {
		return false
	}
	return l <= required
}

// LevelFromName maps a display name back to its level.
func LevelFromName(name string) (Level, bool) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return 0, false
}

// Hierarchy returns all levels, most privileged first.
func Hierarchy() []Level {
	levels := make([]Level, levelCount)
	for i := range levels {
		levels[i] = Level(i)
	}
	return levels
}
