package goals

import (
	"context"
	"log"

	"github.com/google/uuid"
)

type achievementRule struct {
	ID          string
	Title       string
	Description string
	XP          int
	Rarity      Rarity
	// Met is nil for rules that need session history the service does not
	// receive yet. Those rules never unlock.
	Met func(st UserStats, sess Session) bool
}

func (r achievementRule) Implemented() bool { return r.Met != nil }

func (r achievementRule) evaluate(st UserStats, sess Session) bool {
	if !r.Implemented() {
		return false
	}
	return r.Met(st, sess)
}

var achievementRules = []achievementRule{
	{
		ID:          "first_session",
		Title:       "First Steps",
		Description: "Complete your first training session",
		XP:          50,
		Rarity:      RarityCommon,
		Met:         func(UserStats, Session) bool { return true },
	},
	{
		ID:          "perfect_score",
		Title:       "Perfect Score",
		Description: "Average 100 or more in a session",
		XP:          100,
		Rarity:      RarityRare,
		Met: func(_ UserStats, sess Session) bool {
			return sess.AvgScore != nil && *sess.AvgScore >= 100
		},
	},
	{
		ID:          "dedicated_trainee",
		Title:       "Dedicated Trainee",
		Description: "Train seven days in a row",
		XP:          200,
		Rarity:      RarityEpic,
		Met: func(st UserStats, _ Session) bool {
			return st.CurrentStreak >= 7
		},
	},
	// TODO: needs per-session score history to compute variance.
	{
		ID:          "consistency_master",
		Title:       "Consistency Master",
		Description: "Keep your scores steady across ten sessions",
		XP:          150,
		Rarity:      RarityRare,
	},
	// TODO: needs drill completion times in the session feed.
	{
		ID:          "speed_demon",
		Title:       "Speed Demon",
		Description: "Finish a drill in record time",
		XP:          100,
		Rarity:      RarityRare,
	},
}

// CheckAchievements runs the rule set against a session and unlocks whatever
// the owner newly qualifies for.
func (s *Service) CheckAchievements(ctx context.Context, sess Session) ([]Achievement, error) {
	if err := s.validate.Struct(sess); err != nil {
		return nil, fromValidator(err)
	}

	unlock := s.locks.Lock(sess.OwnerID)
	defer unlock()

	res := newResult()
	if err := s.checkAchievements(ctx, sess, &res); err != nil {
		return nil, err
	}
	return res.Unlocked, nil
}

func (s *Service) checkAchievements(ctx context.Context, sess Session, res *ProgressResult) error {
	have, err := s.store.ListAchievements(ctx, sess.OwnerID)
	if err != nil {
		return persist("list achievements", err)
	}
	held := make(map[string]bool, len(have))
	for _, a := range have {
		held[a.AchievementID] = true
	}

	st, err := s.loadStats(ctx, sess.OwnerID)
	if err != nil {
		return err
	}

	var unlocked []Achievement
	xp := 0
	for _, r := range achievementRules {
		if held[r.ID] || !r.evaluate(st, sess) {
			continue
		}
		a := Achievement{
			ID:            uuid.NewString(),
			OwnerID:       sess.OwnerID,
			AchievementID: r.ID,
			Title:         r.Title,
			Description:   r.Description,
			Category:      "training",
			XPEarned:      r.XP,
			UnlockedAt:    s.now(),
			Rarity:        r.Rarity,
		}
		created, err := s.store.PutAchievement(ctx, a)
		if err != nil {
			return persist("put achievement", err)
		}
		if !created {
			continue
		}
		unlocked = append(unlocked, a)
		xp += r.XP
	}
	if len(unlocked) == 0 {
		return nil
	}

	prevLevel := st.Level
	st.TotalXP += xp
	if st.Achievements, err = s.countAchievements(ctx, sess.OwnerID); err != nil {
		return err
	}
	if err := s.saveStats(ctx, &st); err != nil {
		return err
	}

	for _, a := range unlocked {
		log.Printf("[Goals] %s unlocked %s", sess.OwnerID, a.AchievementID)
		s.publish(achievementEvent(a))
	}
	for _, ev := range xpEvents(st, xp, prevLevel) {
		s.publish(ev)
	}
	res.Unlocked = append(res.Unlocked, unlocked...)
	return nil
}
