package goals

import "context"

var suggestionTemplates = []GoalSpec{
	{
		Type:        GoalScore,
		Title:       "Score 85+",
		Description: "Average 85 or better in a session this week",
		Target:      85,
		Category:    CategoryWeekly,
		XPReward:    100,
	},
	{
		Type:        GoalFrequency,
		Title:       "Three Sessions",
		Description: "Complete three training sessions this week",
		Target:      3,
		Category:    CategoryWeekly,
		XPReward:    75,
	},
	{
		Type:        GoalDrill,
		Title:       "Drill Explorer",
		Description: "Complete five drills this month",
		Target:      5,
		Category:    CategoryMonthly,
		XPReward:    150,
	},
}

// SuggestedGoals returns the default templates for goal types the owner has
// no active goal of. It changes nothing.
func (s *Service) SuggestedGoals(ctx context.Context, ownerID string) ([]GoalSpec, error) {
	gs, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, persist("list goals", err)
	}
	active := make(map[GoalType]bool)
	for _, g := range gs {
		if !g.Completed {
			active[g.Type] = true
		}
	}
	out := []GoalSpec{}
	for _, t := range suggestionTemplates {
		if !active[t.Type] {
			out = append(out, t)
		}
	}
	return out, nil
}
