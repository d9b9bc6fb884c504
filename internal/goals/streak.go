package goals

import "time"

// daysBetween counts calendar days from a to b in loc.
func daysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// advanceStreak records activity at t. The first activity ever starts a
// streak of one. A clock that moved backwards counts as the same day.
func advanceStreak(st *UserStats, t time.Time, loc *time.Location) {
	if st.LastActivity.IsZero() {
		st.CurrentStreak = 1
	} else {
		switch d := daysBetween(st.LastActivity, t, loc); {
		case d <= 0:
			st.CurrentStreak = max(1, st.CurrentStreak)
		case d == 1:
			st.CurrentStreak++
		default:
			st.CurrentStreak = 1
		}
	}
	st.LongestStreak = max(st.LongestStreak, st.CurrentStreak)
	if t.After(st.LastActivity) {
		st.LastActivity = t
	}
}
