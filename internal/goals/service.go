package goals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"playerprogress/internal/events"
	"playerprogress/internal/keylock"
)

// Partial score credit stops short of the target so only a session that
// actually reaches the target score completes the goal.
const partialCreditCeiling = 0.99

// Service owns goal lifecycle, XP, levels and daily streaks. All writes for
// one owner are serialized; different owners proceed concurrently.
type Service struct {
	store    Store
	pub      Publisher
	locks    *keylock.Locks
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

// NewService builds a Service. pub may be nil. loc decides calendar days for
// streaks and defaults to UTC.
func NewService(store Store, pub Publisher, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		pub:      pub,
		locks:    keylock.New(),
		validate: validator.New(),
		loc:      loc,
		now:      time.Now,
	}
}

func (s *Service) CreateGoal(ctx context.Context, ownerID string, spec GoalSpec) (Goal, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Goal{}, invalid("owner_id", "required")
	}
	if err := s.validate.Struct(spec); err != nil {
		return Goal{}, fromValidator(err)
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	now := s.now()
	g := Goal{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Type:        spec.Type,
		Title:       spec.Title,
		Description: spec.Description,
		Target:      spec.Target,
		Category:    spec.Category,
		XPReward:    spec.XPReward,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutGoal(ctx, g); err != nil {
		return Goal{}, persist("put goal", err)
	}
	log.Printf("[Goals] Created %s goal %s for %s", g.Type, g.ID, ownerID)
	return g, nil
}

func (s *Service) Goals(ctx context.Context, ownerID string) ([]Goal, error) {
	gs, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, persist("list goals", err)
	}
	if gs == nil {
		gs = []Goal{}
	}
	return gs, nil
}

func (s *Service) Achievements(ctx context.Context, ownerID string) ([]Achievement, error) {
	as, err := s.store.ListAchievements(ctx, ownerID)
	if err != nil {
		return nil, persist("list achievements", err)
	}
	if as == nil {
		as = []Achievement{}
	}
	return as, nil
}

// Stats returns the owner's stats, or level-one defaults for a new owner.
func (s *Service) Stats(ctx context.Context, ownerID string) (UserStats, error) {
	return s.loadStats(ctx, ownerID)
}

// TrackProgress applies one completed session: daily streak first, then goal
// progress, then the achievement rules. The whole sequence holds the owner's
// lock so sessions for one owner never interleave.
func (s *Service) TrackProgress(ctx context.Context, sess Session) (ProgressResult, error) {
	if err := s.validate.Struct(sess); err != nil {
		return ProgressResult{}, fromValidator(err)
	}
	if sess.Timestamp.IsZero() {
		sess.Timestamp = s.now()
	}

	unlock := s.locks.Lock(sess.OwnerID)
	defer unlock()

	res := newResult()
	if _, err := s.updateStreak(ctx, sess.OwnerID, sess.Timestamp); err != nil {
		return ProgressResult{}, err
	}
	if err := s.trackGoalProgress(ctx, sess, &res); err != nil {
		return ProgressResult{}, err
	}
	if err := s.checkAchievements(ctx, sess, &res); err != nil {
		return ProgressResult{}, err
	}
	st, err := s.loadStats(ctx, sess.OwnerID)
	if err != nil {
		return ProgressResult{}, err
	}
	res.Stats = st

	s.publish(events.Event{Kind: events.SessionTracked, OwnerID: sess.OwnerID, Level: st.Level, Streak: st.CurrentStreak})
	return res, nil
}

// TrackGoalProgress advances every active goal of the session's owner without
// touching the daily streak or achievement rules.
func (s *Service) TrackGoalProgress(ctx context.Context, sess Session) (ProgressResult, error) {
	if err := s.validate.Struct(sess); err != nil {
		return ProgressResult{}, fromValidator(err)
	}

	unlock := s.locks.Lock(sess.OwnerID)
	defer unlock()

	res := newResult()
	if err := s.trackGoalProgress(ctx, sess, &res); err != nil {
		return ProgressResult{}, err
	}
	st, err := s.loadStats(ctx, sess.OwnerID)
	if err != nil {
		return ProgressResult{}, err
	}
	res.Stats = st
	return res, nil
}

func (s *Service) trackGoalProgress(ctx context.Context, sess Session, res *ProgressResult) error {
	gs, err := s.store.ListGoals(ctx, sess.OwnerID)
	if err != nil {
		return persist("list goals", err)
	}
	for _, g := range gs {
		if g.Completed {
			continue
		}
		inc := increment(g, sess)
		if inc == 0 {
			continue
		}
		updated, ach, err := s.updateGoalProgress(ctx, g, inc)
		if err != nil {
			return err
		}
		res.Goals = append(res.Goals, updated)
		if updated.Completed {
			res.Completed = append(res.Completed, updated)
		}
		if ach != nil {
			res.Unlocked = append(res.Unlocked, *ach)
		}
	}
	return nil
}

// increment is how far sess moves g.
func increment(g Goal, sess Session) float64 {
	switch g.Type {
	case GoalDrill:
		if sess.DrillType != "" {
			return 1
		}
	case GoalFrequency:
		return 1
	case GoalScore:
		if sess.AvgScore == nil || *sess.AvgScore <= 0 {
			return 0
		}
		avg := *sess.AvgScore
		if avg >= g.Target {
			return g.Target
		}
		room := partialCreditCeiling*g.Target - g.Progress
		if room <= 0 {
			return 0
		}
		return math.Min(avg/g.Target, room)
	}
	return 0
}

// UpdateGoalProgress adds inc to a goal, completing and rewarding it when the
// target is reached. Completed goals are left as they are.
func (s *Service) UpdateGoalProgress(ctx context.Context, goalID string, inc float64) (Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, persist("get goal", err)
	}

	unlock := s.locks.Lock(g.OwnerID)
	defer unlock()

	// reread under the owner's lock
	g, err = s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, persist("get goal", err)
	}
	g, _, err = s.updateGoalProgress(ctx, g, inc)
	return g, err
}

func (s *Service) updateGoalProgress(ctx context.Context, g Goal, inc float64) (Goal, *Achievement, error) {
	if math.IsNaN(inc) || inc < 0 {
		return Goal{}, nil, invalid("increment", "must be a positive number")
	}
	if g.Completed || inc == 0 {
		return g, nil, nil
	}

	now := s.now()
	g.Progress = math.Min(g.Target, g.Progress+inc)
	g.UpdatedAt = now
	if g.Progress < g.Target {
		if err := s.store.PutGoal(ctx, g); err != nil {
			return Goal{}, nil, persist("put goal", err)
		}
		return g, nil, nil
	}

	g.Completed = true
	g.CompletedAt = &now

	// Reward first, goal last: a failure here leaves the goal open rather
	// than complete without its reward.
	ach, pending, err := s.rewardCompletion(ctx, g, now)
	if err != nil {
		return Goal{}, nil, err
	}
	if err := s.store.PutGoal(ctx, g); err != nil {
		return Goal{}, nil, persist("put goal", err)
	}
	s.settleGoalReward(ctx, g)
	for _, ev := range pending {
		s.publish(ev)
	}
	log.Printf("[Goals] %s completed goal %s (+%d XP)", g.OwnerID, g.ID, g.XPReward)
	return g, ach, nil
}

// rewardCompletion writes the completion achievement and then the stats. The
// goal id is kept on the stats until the goal itself is stored, so a retry
// after a failed goal write does not pay the reward again. It returns the
// achievement if one was created and the events to publish once the goal is
// stored.
func (s *Service) rewardCompletion(ctx context.Context, g Goal, now time.Time) (*Achievement, []events.Event, error) {
	a := Achievement{
		ID:            uuid.NewString(),
		OwnerID:       g.OwnerID,
		AchievementID: "goal_completed_" + string(g.Type),
		Title:         "Goal Complete: " + g.Title,
		Description:   fmt.Sprintf("Completed a %s %s goal", g.Category, g.Type),
		Category:      "goals",
		XPEarned:      g.XPReward,
		UnlockedAt:    now,
		Rarity:        RarityCommon,
	}
	created, err := s.store.PutAchievement(ctx, a)
	if err != nil {
		return nil, nil, persist("put achievement", err)
	}

	st, err := s.loadStats(ctx, g.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	prevLevel := st.Level
	xp := 0
	if !slices.Contains(st.PendingGoalRewards, g.ID) {
		xp = addXP(&st, g.XPReward)
		st.GoalsCompleted++
		st.PendingGoalRewards = append(slices.Clip(st.PendingGoalRewards), g.ID)
	}
	if st.Achievements, err = s.countAchievements(ctx, g.OwnerID); err != nil {
		return nil, nil, err
	}
	if err := s.saveStats(ctx, &st); err != nil {
		return nil, nil, err
	}

	pending := []events.Event{{Kind: events.GoalCompleted, OwnerID: g.OwnerID, XP: g.XPReward, Ref: g.ID, Title: g.Title}}
	if created {
		pending = append(pending, achievementEvent(a))
	}
	pending = append(pending, xpEvents(st, xp, prevLevel)...)
	if !created {
		return nil, pending, nil
	}
	return &a, pending, nil
}

// settleGoalReward drops the goal's pending reward marker once the goal is
// stored complete. A failure only leaves a stale marker behind.
func (s *Service) settleGoalReward(ctx context.Context, g Goal) {
	st, err := s.loadStats(ctx, g.OwnerID)
	if err != nil {
		log.Printf("[Goals] Settling reward for goal %s: %v", g.ID, err)
		return
	}
	kept := make([]string, 0, len(st.PendingGoalRewards))
	for _, id := range st.PendingGoalRewards {
		if id != g.ID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(st.PendingGoalRewards) {
		return
	}
	st.PendingGoalRewards = kept
	if err := s.store.PutStats(ctx, st); err != nil {
		log.Printf("[Goals] Settling reward for goal %s: %v", g.ID, err)
	}
}

// addXP credits amount to st, saturating at MaxTotalXP, and returns what was
// actually credited.
func addXP(st *UserStats, amount int) int {
	if room := MaxTotalXP - st.TotalXP; amount > room {
		amount = max(room, 0)
	}
	st.TotalXP += amount
	return amount
}

// AwardXP adds amount to the owner's total and recomputes the level.
func (s *Service) AwardXP(ctx context.Context, ownerID string, amount int) (UserStats, error) {
	if strings.TrimSpace(ownerID) == "" {
		return UserStats{}, invalid("owner_id", "required")
	}
	if amount < 0 {
		return UserStats{}, invalid("amount", "must not be negative")
	}
	if amount > MaxTotalXP {
		return UserStats{}, invalid("amount", fmt.Sprintf("must not exceed %d", MaxTotalXP))
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	st, err := s.loadStats(ctx, ownerID)
	if err != nil {
		return UserStats{}, err
	}
	if amount > MaxTotalXP-st.TotalXP {
		return UserStats{}, invalid("amount", fmt.Sprintf("total XP would exceed %d", MaxTotalXP))
	}
	prevLevel := st.Level
	st.TotalXP += amount
	if err := s.saveStats(ctx, &st); err != nil {
		return UserStats{}, err
	}
	for _, ev := range xpEvents(st, amount, prevLevel) {
		s.publish(ev)
	}
	return st, nil
}

// UpdateUserStreak records activity now for the owner's daily streak.
func (s *Service) UpdateUserStreak(ctx context.Context, ownerID string) (UserStats, error) {
	if strings.TrimSpace(ownerID) == "" {
		return UserStats{}, invalid("owner_id", "required")
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	return s.updateStreak(ctx, ownerID, s.now())
}

func (s *Service) updateStreak(ctx context.Context, ownerID string, at time.Time) (UserStats, error) {
	st, err := s.loadStats(ctx, ownerID)
	if err != nil {
		return UserStats{}, err
	}
	prev := st.CurrentStreak
	advanceStreak(&st, at, s.loc)
	if err := s.saveStats(ctx, &st); err != nil {
		return UserStats{}, err
	}
	if st.CurrentStreak != prev {
		s.publish(events.Event{Kind: events.StreakUpdated, OwnerID: ownerID, Streak: st.CurrentStreak})
	}
	return st, nil
}

// RecordBadge stores an externally earned badge as an achievement and awards
// XP by rarity, raised 10% per day of the current streak. A badge already on
// record is reported with created=false and awards nothing.
func (s *Service) RecordBadge(ctx context.Context, ownerID string, b BadgeAward) (Achievement, bool, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Achievement{}, false, invalid("owner_id", "required")
	}
	if b.ID == "" {
		return Achievement{}, false, invalid("badge_id", "required")
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	st, err := s.loadStats(ctx, ownerID)
	if err != nil {
		return Achievement{}, false, err
	}
	xp := StreakBonus(XPForRarity(b.Rarity), st.CurrentStreak)
	a := Achievement{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		AchievementID: BadgeAchievementID(b.ID),
		Title:         b.Name,
		Description:   b.Description,
		Category:      "badge",
		XPEarned:      xp,
		UnlockedAt:    s.now(),
		Rarity:        b.Rarity,
	}
	created, err := s.store.PutAchievement(ctx, a)
	if err != nil {
		return Achievement{}, false, persist("put achievement", err)
	}
	if !created {
		return Achievement{}, false, nil
	}

	prevLevel := st.Level
	xp = addXP(&st, xp)
	if st.Achievements, err = s.countAchievements(ctx, ownerID); err != nil {
		return Achievement{}, false, err
	}
	if err := s.saveStats(ctx, &st); err != nil {
		return Achievement{}, false, err
	}

	s.publish(events.Event{Kind: events.BadgeEarned, OwnerID: ownerID, XP: xp, Ref: b.ID, Title: b.Name, Rarity: string(b.Rarity)})
	for _, ev := range xpEvents(st, xp, prevLevel) {
		s.publish(ev)
	}
	log.Printf("[Goals] %s earned badge %s (+%d XP)", ownerID, b.ID, xp)
	return a, true, nil
}

func BadgeAchievementID(badgeID string) string {
	return "badge_" + strings.ToLower(badgeID)
}

var rarityXP = map[Rarity]int{
	RarityCommon:    50,
	RarityRare:      100,
	RarityEpic:      250,
	RarityLegendary: 500,
}

func XPForRarity(r Rarity) int {
	return rarityXP[r]
}

func (s *Service) loadStats(ctx context.Context, ownerID string) (UserStats, error) {
	st, err := s.store.GetStats(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return UserStats{OwnerID: ownerID, Level: 1}, nil
	}
	if err != nil {
		return UserStats{}, persist("get stats", err)
	}
	return st, nil
}

func (s *Service) saveStats(ctx context.Context, st *UserStats) error {
	st.Level = Level(st.TotalXP)
	st.LastUpdated = s.now()
	if err := s.store.PutStats(ctx, *st); err != nil {
		return persist("put stats", err)
	}
	return nil
}

func (s *Service) countAchievements(ctx context.Context, ownerID string) (int, error) {
	as, err := s.store.ListAchievements(ctx, ownerID)
	if err != nil {
		return 0, persist("list achievements", err)
	}
	return len(as), nil
}

func (s *Service) publish(ev events.Event) {
	if s.pub == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.pub.Publish(ev)
}

func xpEvents(st UserStats, amount, prevLevel int) []events.Event {
	var evs []events.Event
	if amount > 0 {
		evs = append(evs, events.Event{Kind: events.XPAwarded, OwnerID: st.OwnerID, XP: amount, Level: st.Level})
	}
	if st.Level > prevLevel {
		log.Printf("[Goals] %s reached level %d", st.OwnerID, st.Level)
		evs = append(evs, events.Event{Kind: events.LevelUp, OwnerID: st.OwnerID, Level: st.Level})
	}
	return evs
}

func achievementEvent(a Achievement) events.Event {
	return events.Event{
		Kind:    events.AchievementUnlocked,
		OwnerID: a.OwnerID,
		XP:      a.XPEarned,
		Ref:     a.AchievementID,
		Title:   a.Title,
		Rarity:  string(a.Rarity),
	}
}

func newResult() ProgressResult {
	return ProgressResult{
		Goals:     []Goal{},
		Completed: []Goal{},
		Unlocked:  []Achievement{},
	}
}
