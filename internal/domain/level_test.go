package domain

import (
	"errors"
	"testing"
)

func TestLevel_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  bool
	}{
		{LevelA1, true},
		{LevelA2, true},
		{LevelB1, true},
		{LevelB2, true},
		{LevelC1, true},
		{LevelC2, true},
		{Level("a1"), false},
		{Level("D1"), false},
		{Level("undefined"), false},
		{Level(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			t.Parallel()
			if got := tt.level.IsValid(); got != tt.want {
				t.Errorf("Level(%q).IsValid() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Level
		wantErr bool
	}{
		{name: "exact", input: "B2", want: LevelB2},
		{name: "lowercase", input: "a2", want: LevelA2},
		{name: "padded", input: "  c1 ", want: LevelC1},
		{name: "empty", input: "", wantErr: true},
		{name: "js undefined", input: "undefined", wantErr: true},
		{name: "unknown", input: "B3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseLevel(%q) error = %v, want ErrValidation", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevels_Ordered(t *testing.T) {
	t.Parallel()

	if len(Levels) != 6 || Levels[0] != LevelA1 || Levels[5] != LevelC2 {
		t.Errorf("Levels = %v", Levels)
	}
}
