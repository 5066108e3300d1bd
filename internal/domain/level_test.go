package domain

import "testing"

func TestParseLevelPrefixes(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"beginner", LevelBeginner},
		{"Begin", LevelBeginner},
		{"BEGINNERS", LevelBeginner},
		{"intermediate", LevelIntermediate},
		{"Inter", LevelIntermediate},
		{"advanced", LevelAdvanced},
		{"advance", LevelAdvanced},
		{"ADV", LevelAdvanced},
	}
	for _, c := range cases {
		got, err := ParseLevel(c.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseLevel("expert"); err != ErrUnknownLevel {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
	if _, err := ParseLevel(""); err != ErrUnknownLevel {
		t.Fatalf("expected ErrUnknownLevel for empty input, got %v", err)
	}
}

func TestRewardTable(t *testing.T) {
	cases := []struct {
		level   string
		attempt int
		want    int
	}{
		{"beginner", 1, 10},
		{"beginner", 2, 5},
		{"beginner", 3, 3},
		{"beginner", 4, 0},
		{"beginner", 9, 0},
		{"intermediate", 1, 20},
		{"intermediate", 2, 15},
		{"intermediate", 3, 10},
		{"intermediate", 4, 5},
		{"intermediate", 7, 5},
		{"advanced", 1, 30},
		{"advanced", 2, 25},
		{"advanced", 3, 20},
		{"advanced", 4, 10},
		{"advance", 1, 30}, // legacy spelling in stored data
		{"Adv", 5, 10},
		{"expert", 1, 0}, // unrecognized level earns nothing
		{"", 1, 0},
		{"beginner", 0, 0},
	}
	for _, c := range cases {
		if got := Reward(c.level, c.attempt); got != c.want {
			t.Fatalf("Reward(%q, %d) = %d, want %d", c.level, c.attempt, got, c.want)
		}
	}
}
