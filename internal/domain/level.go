package domain

import "strings"

// Level is the closed set of quiz difficulties. Stored level strings are
// free text in older data, so parsing happens at the boundary and
// aggregation uses the loose BucketLevel matcher.
type Level int

const (
	LevelUnknown Level = iota
	LevelBeginner
	LevelIntermediate
	LevelAdvanced
)

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelIntermediate:
		return "intermediate"
	case LevelAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// ParseLevel resolves a level name by case-insensitive prefix match
// (begin*, inter*, adv*) and fails on anything else.
func ParseLevel(raw string) (Level, error) {
	if l := BucketLevel(raw); l != LevelUnknown {
		return l, nil
	}
	return LevelUnknown, ErrUnknownLevel
}

// BucketLevel is the tolerant variant used when bucketing stored data:
// unrecognized input maps to LevelUnknown and contributes nothing.
func BucketLevel(raw string) Level {
	lvl := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(lvl, "begin"):
		return LevelBeginner
	case strings.HasPrefix(lvl, "inter"):
		return LevelIntermediate
	case strings.HasPrefix(lvl, "adv"):
		return LevelAdvanced
	default:
		return LevelUnknown
	}
}

// rewardTable maps level -> reward by the ordinal attempt on which the
// question was first answered correctly. Index 3 covers the 4th and
// every later attempt.
var rewardTable = map[Level][4]int{
	LevelBeginner:     {10, 5, 3, 0},
	LevelIntermediate: {20, 15, 10, 5},
	LevelAdvanced:     {30, 25, 20, 10},
}

// Reward returns the diamonds earned for answering correctly on the given
// attempt number (1-based). Unrecognized levels and attempt numbers below 1
// earn nothing.
func Reward(level string, attempt int) int {
	tiers, ok := rewardTable[BucketLevel(level)]
	if !ok || attempt < 1 {
		return 0
	}
	if attempt > 4 {
		attempt = 4
	}
	return tiers[attempt-1]
}

// Chart normalization caps per level: a date's summed reward is reported as
// a percentage of the cap.
const (
	BeginnerChartCap     = 50
	IntermediateChartCap = 100
	AdvancedChartCap     = 150
)
