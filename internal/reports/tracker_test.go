package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"playerprogress/internal/badges"
	"playerprogress/internal/cache"
	"playerprogress/internal/goals"
	"playerprogress/internal/players"
	"playerprogress/internal/trends"
)

// players.Store and badges.Engine run on the wall clock, so tests do too.
var now = time.Now().UTC().Truncate(time.Second)

type recorder struct {
	mu     sync.Mutex
	awards []goals.BadgeAward
	err    error
}

func (r *recorder) RecordBadge(_ context.Context, ownerID string, b goals.BadgeAward) (goals.Achievement, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return goals.Achievement{}, false, r.err
	}
	r.awards = append(r.awards, b)
	return goals.Achievement{OwnerID: ownerID, AchievementID: goals.BadgeAchievementID(b.ID)}, true, nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Delete(context.Context, string) error { return errors.New("cache down") }

func newTestTracker(c cache.Cache, rec BadgeRecorder) *Tracker {
	ps := players.NewStore(30*24*time.Hour, 30)
	be := badges.NewEngine(badges.DefaultWeeklyMVPMin)
	tr := NewTracker(ps, be, c, time.Minute, rec)
	tr.now = func() time.Time { return now }
	return tr
}

func snapshot(daysAgo int, points float64) trends.StatSnapshot {
	return trends.StatSnapshot{
		Timestamp: now.AddDate(0, 0, -daysAgo),
		Metrics:   trends.Metrics{"points": points, "rebounds": 5},
	}
}

func TestTracker_AddHighlightsRecordsBadges(t *testing.T) {
	rec := &recorder{}
	tr := newTestTracker(cache.NewMemory(), rec)
	ctx := context.Background()

	earned, err := tr.AddHighlights(ctx, "p1", []trends.Highlight{
		{Type: badges.HighlightSlamDunk, Timestamp: now.Add(-time.Hour)},
	})
	if err != nil {
		t.Fatalf("AddHighlights: %v", err)
	}
	if len(earned) != 1 || earned[0].ID != badges.BadgeFirstDunk {
		t.Fatalf("earned = %v, want [%s]", earned, badges.BadgeFirstDunk)
	}
	if len(rec.awards) != 1 || rec.awards[0].ID != string(badges.BadgeFirstDunk) {
		t.Errorf("recorded = %v, want the dunk badge", rec.awards)
	}

	earned, err = tr.AddHighlights(ctx, "p1", []trends.Highlight{
		{Type: badges.HighlightSlamDunk, Timestamp: now},
	})
	if err != nil {
		t.Fatalf("AddHighlights: %v", err)
	}
	if earned == nil || len(earned) != 0 {
		t.Errorf("second dunk earned %v, want empty slice", earned)
	}
}

func TestTracker_AddHighlightsDefaultsTimestamp(t *testing.T) {
	tr := newTestTracker(cache.NewMemory(), nil)
	if _, err := tr.AddHighlights(context.Background(), "p1", []trends.Highlight{{Type: badges.HighlightClutchPlay}}); err != nil {
		t.Fatalf("AddHighlights: %v", err)
	}
	r, err := tr.Report(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if s := r.Streaks[badges.HighlightClutchPlay]; s.Current != 1 {
		t.Errorf("streak = %+v, want current 1", s)
	}
}

func TestTracker_AddHighlightsValidation(t *testing.T) {
	tr := newTestTracker(cache.NewMemory(), nil)
	ctx := context.Background()

	if _, err := tr.AddHighlights(ctx, "", []trends.Highlight{{Type: "SlamDunk"}}); !errors.Is(err, goals.ErrValidation) {
		t.Errorf("empty player: err = %v, want validation", err)
	}
	if _, err := tr.AddHighlights(ctx, "p1", nil); !errors.Is(err, goals.ErrValidation) {
		t.Errorf("no highlights: err = %v, want validation", err)
	}
	if _, err := tr.AddHighlights(ctx, "p1", []trends.Highlight{{Timestamp: now}}); !errors.Is(err, goals.ErrValidation) {
		t.Errorf("missing type: err = %v, want validation", err)
	}
	if _, err := tr.Report(ctx, "p1"); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("rejected input should not create a profile, err = %v", err)
	}
}

func TestTracker_RecorderFailureStillReturnsBadges(t *testing.T) {
	rec := &recorder{err: goals.ErrPersistence}
	tr := newTestTracker(cache.NewMemory(), rec)

	earned, err := tr.AddHighlights(context.Background(), "p1", []trends.Highlight{
		{Type: badges.HighlightSlamDunk, Timestamp: now},
	})
	if !errors.Is(err, goals.ErrPersistence) {
		t.Errorf("err = %v, want persistence error", err)
	}
	if len(earned) == 0 {
		t.Error("badges earned in memory should still be returned")
	}
}

func TestTracker_ReportUnknownPlayer(t *testing.T) {
	tr := newTestTracker(cache.NewMemory(), nil)
	if _, err := tr.Report(context.Background(), "ghost"); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTracker_Report(t *testing.T) {
	tr := newTestTracker(cache.NewMemory(), nil)
	ctx := context.Background()

	if err := tr.AddSnapshot(ctx, "p1", snapshot(2, 10)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}
	if err := tr.AddSnapshot(ctx, "p1", snapshot(1, 20)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}

	r, err := tr.Report(ctx, "p1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.PlayerID != "p1" {
		t.Errorf("PlayerID = %q, want p1", r.PlayerID)
	}
	if !r.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", r.LastUpdated, now)
	}
	if got := len(r.Trends[trends.CategoryOffense]); got != 2 {
		t.Errorf("offense trend points = %d, want 2", got)
	}
	if r.Badges.Earned == nil {
		t.Error("badges should be present even when none are earned")
	}
}

func TestTracker_ReportIsCachedAndInvalidated(t *testing.T) {
	mem := cache.NewMemory()
	tr := newTestTracker(mem, nil)
	ctx := context.Background()

	if err := tr.AddSnapshot(ctx, "p1", snapshot(1, 10)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}
	first, err := tr.Report(ctx, "p1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if mem.Len() != 1 {
		t.Fatalf("cache entries = %d, want 1", mem.Len())
	}

	tr.now = func() time.Time { return now.Add(time.Second) }
	cached, err := tr.Report(ctx, "p1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !cached.LastUpdated.Equal(first.LastUpdated) {
		t.Errorf("second read LastUpdated = %v, want cached %v", cached.LastUpdated, first.LastUpdated)
	}

	if err := tr.AddSnapshot(ctx, "p1", snapshot(0, 30)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}
	if mem.Len() != 0 {
		t.Errorf("cache entries = %d after a write, want 0", mem.Len())
	}
	fresh, err := tr.Report(ctx, "p1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if got := len(fresh.Trends[trends.CategoryOffense]); got != 2 {
		t.Errorf("offense trend points = %d after invalidation, want 2", got)
	}
}

func TestTracker_CacheFailureFallsThrough(t *testing.T) {
	tr := newTestTracker(brokenCache{}, nil)
	ctx := context.Background()

	if err := tr.AddSnapshot(ctx, "p1", snapshot(1, 10)); err != nil {
		t.Fatalf("AddSnapshot with a broken cache: %v", err)
	}
	if _, err := tr.Report(ctx, "p1"); err != nil {
		t.Errorf("Report with a broken cache: %v", err)
	}
}

func TestTracker_AddSnapshotValidation(t *testing.T) {
	tr := newTestTracker(cache.NewMemory(), nil)
	err := tr.AddSnapshot(context.Background(), "p1", trends.StatSnapshot{Timestamp: now})
	if !errors.Is(err, goals.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestTracker_SweepEvictsAndInvalidates(t *testing.T) {
	mem := cache.NewMemory()
	tr := newTestTracker(mem, nil)
	tr.players = players.NewStore(24*time.Hour, 30)
	ctx := context.Background()

	// older than the retention window, so the profile is empty once trimmed
	if err := tr.AddSnapshot(ctx, "idle", snapshot(3, 10)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}
	if _, err := tr.Report(ctx, "idle"); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if mem.Len() != 1 {
		t.Fatalf("cache entries = %d, want 1", mem.Len())
	}

	evicted := tr.Sweep(ctx)
	if len(evicted) != 1 || evicted[0] != "idle" {
		t.Errorf("evicted = %v, want [idle]", evicted)
	}
	if mem.Len() != 0 {
		t.Errorf("cache entries = %d after sweep, want 0", mem.Len())
	}
	if _, err := tr.Report(ctx, "idle"); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("Report after eviction: err = %v, want ErrNotFound", err)
	}
}

func TestTracker_ForgetResetsPlayer(t *testing.T) {
	mem := cache.NewMemory()
	rec := &recorder{}
	tr := newTestTracker(mem, rec)
	ctx := context.Background()

	if err := tr.AddSnapshot(ctx, "p1", snapshot(1, 10)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}
	if _, err := tr.AddHighlights(ctx, "p1", []trends.Highlight{{Type: badges.HighlightSlamDunk, Timestamp: now}}); err != nil {
		t.Fatalf("AddHighlights: %v", err)
	}
	if _, err := tr.Report(ctx, "p1"); err != nil {
		t.Fatalf("Report: %v", err)
	}

	if err := tr.Forget(ctx, "p1"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if mem.Len() != 0 {
		t.Errorf("cache entries = %d after reset, want 0", mem.Len())
	}
	if _, err := tr.Report(ctx, "p1"); !errors.Is(err, goals.ErrNotFound) {
		t.Errorf("Report after reset: err = %v, want ErrNotFound", err)
	}
	if got := tr.Badges("p1"); len(got.Earned) != 0 {
		t.Errorf("earned after reset = %v, want none", got.Earned)
	}

	earned, err := tr.AddHighlights(ctx, "p1", []trends.Highlight{{Type: badges.HighlightSlamDunk, Timestamp: now}})
	if err != nil {
		t.Fatalf("AddHighlights: %v", err)
	}
	if len(earned) != 1 || earned[0].ID != badges.BadgeFirstDunk {
		t.Errorf("earned = %v, want the dunk badge again after reset", earned)
	}
}

func TestTracker_ForgetValidation(t *testing.T) {
	tr := newTestTracker(cache.NewMemory(), nil)
	if err := tr.Forget(context.Background(), " "); !errors.Is(err, goals.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
