package badges

import "sort"

type BadgeID string

const (
	BadgeFirstClutch      BadgeID = "FIRST_CLUTCH"
	BadgeFirstDunk        BadgeID = "FIRST_DUNK"
	BadgeClutchPerformer  BadgeID = "CLUTCH_PERFORMER"
	BadgeHotStreakMaster  BadgeID = "HOT_STREAK_MASTER"
	BadgeMomentumMaker    BadgeID = "MOMENTUM_MAKER"
	BadgeSharpshooter     BadgeID = "SHARPSHOOTER"
	BadgeLockdownDefender BadgeID = "LOCKDOWN_DEFENDER"
	BadgeWeeklyMVP        BadgeID = "WEEKLY_MVP"
)

// Highlight types emitted by the game tagger.
const (
	HighlightClutchPlay    = "ClutchPlay"
	HighlightHotStreak     = "HotStreak"
	HighlightMomentumShift = "MomentumShift"
	HighlightThreePointer  = "ThreePointer"
	HighlightSlamDunk      = "SlamDunk"
	HighlightDefensivePlay = "DefensivePlay"
)

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

type Rule int

const (
	// RuleFirstOf awards on the first highlight of HighlightType.
	RuleFirstOf Rule = iota
	// RuleCount awards once the cumulative count of HighlightType reaches Requirement.
	RuleCount
	// RuleWeeklyMVP awards to the player with the strictly highest highlight
	// count over the last seven days, provided it reaches Requirement.
	RuleWeeklyMVP
)

type Badge struct {
	ID            BadgeID
	Name          string
	Description   string
	Icon          string
	Requirement   int
	HighlightType string
	Rule          Rule
	Rarity        string
}

// DefaultWeeklyMVPMin is the weekly highlight floor for Weekly MVP.
const DefaultWeeklyMVPMin = 10

var AllBadges = map[BadgeID]Badge{
	BadgeFirstClutch:      {ID: BadgeFirstClutch, Name: "Ice in the Veins", Description: "Make your first clutch play", Icon: "🧊", Requirement: 1, HighlightType: HighlightClutchPlay, Rule: RuleFirstOf, Rarity: RarityCommon},
	BadgeFirstDunk:        {ID: BadgeFirstDunk, Name: "Poster Moment", Description: "Throw down your first slam dunk", Icon: "🏀", Requirement: 1, HighlightType: HighlightSlamDunk, Rule: RuleFirstOf, Rarity: RarityCommon},
	BadgeClutchPerformer:  {ID: BadgeClutchPerformer, Name: "Clutch Performer", Description: "10 clutch plays", Icon: "⏱️", Requirement: 10, HighlightType: HighlightClutchPlay, Rule: RuleCount, Rarity: RarityRare},
	BadgeHotStreakMaster:  {ID: BadgeHotStreakMaster, Name: "Hot Streak Master", Description: "5 hot streaks", Icon: "🔥", Requirement: 5, HighlightType: HighlightHotStreak, Rule: RuleCount, Rarity: RarityRare},
	BadgeMomentumMaker:    {ID: BadgeMomentumMaker, Name: "Momentum Maker", Description: "Spark 5 momentum shifts", Icon: "🌊", Requirement: 5, HighlightType: HighlightMomentumShift, Rule: RuleCount, Rarity: RarityRare},
	BadgeSharpshooter:     {ID: BadgeSharpshooter, Name: "Sharpshooter", Description: "25 three pointers", Icon: "🎯", Requirement: 25, HighlightType: HighlightThreePointer, Rule: RuleCount, Rarity: RarityEpic},
	BadgeLockdownDefender: {ID: BadgeLockdownDefender, Name: "Lockdown Defender", Description: "15 defensive plays", Icon: "🛡️", Requirement: 15, HighlightType: HighlightDefensivePlay, Rule: RuleCount, Rarity: RarityEpic},
	BadgeWeeklyMVP:        {ID: BadgeWeeklyMVP, Name: "Weekly MVP", Description: "Most highlights of anyone this week", Icon: "👑", Requirement: DefaultWeeklyMVPMin, Rule: RuleWeeklyMVP, Rarity: RarityLegendary},
}

// catalog returns the badges in id order with the Weekly MVP floor applied.
func catalog(weeklyMVPMin int) []Badge {
	out := make([]Badge, 0, len(AllBadges))
	for _, b := range AllBadges {
		if b.Rule == RuleWeeklyMVP && weeklyMVPMin > 0 {
			b.Requirement = weeklyMVPMin
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
