package goals

import "math"

const xpPerLevelStep = 100

// MaxTotalXP bounds an owner's XP so it fits the INTEGER stats column.
const MaxTotalXP = math.MaxInt32

// LevelThreshold is the cumulative XP at which level begins:
// 100 * level * (level-1) / 2. It saturates at math.MaxInt.
func LevelThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	t := float64(xpPerLevelStep) * float64(level) * float64(level-1) / 2
	if t >= math.MaxInt {
		return math.MaxInt
	}
	return int(t)
}

// Level inverts the triangular curve. The closed form can land one off at
// exact boundaries, so the result is corrected against LevelThreshold.
func Level(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	if totalXP > MaxTotalXP {
		totalXP = MaxTotalXP
	}
	l := int(math.Floor((math.Sqrt(1+8*float64(totalXP)/xpPerLevelStep)-1)/2)) + 1
	for l > 1 && LevelThreshold(l) > totalXP {
		l--
	}
	for LevelThreshold(l+1) <= totalXP {
		l++
	}
	return l
}

type LevelInfo struct {
	Level         int     `json:"level"`
	TotalXP       int     `json:"total_xp"`
	XPIntoLevel   int     `json:"xp_into_level"`
	XPToNextLevel int     `json:"xp_to_next_level"`
	Percent       float64 `json:"percent"`
}

func LevelProgress(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	if totalXP > MaxTotalXP {
		totalXP = MaxTotalXP
	}
	l := Level(totalXP)
	start, next := LevelThreshold(l), LevelThreshold(l+1)
	into := totalXP - start
	return LevelInfo{
		Level:         l,
		TotalXP:       totalXP,
		XPIntoLevel:   into,
		XPToNextLevel: next - totalXP,
		Percent:       float64(into) / float64(next-start) * 100,
	}
}
