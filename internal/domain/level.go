package domain

import "strings"

// Level is a CEFR proficiency tag used to calibrate output difficulty.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels lists all CEFR levels from lowest to highest.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

func (l Level) String() string { return string(l) }

func (l Level) IsValid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}

// ParseLevel accepts a level tag in any case with surrounding whitespace.
// Returns a ValidationError for anything that is not a CEFR tag.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", NewValidationError("level", "must be one of A1, A2, B1, B2, C1, C2")
	}
	return l, nil
}
