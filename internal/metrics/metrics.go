package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playerprogress/internal/events"
)

// Metrics counts progress events. It is fed from the event bus and never
// sits on the request path.
type Metrics struct {
	registry *prometheus.Registry

	sessions       prometheus.Counter
	xpAwarded      prometheus.Counter
	levelUps       prometheus.Counter
	goalsCompleted prometheus.Counter
	streakUpdates  prometheus.Counter
	achievements   *prometheus.CounterVec
	badges         *prometheus.CounterVec
	evicted        prometheus.Counter
	cachePurged    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_sessions_tracked_total",
			Help: "Training sessions applied to goals and streaks.",
		}),
		xpAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_xp_awarded_total",
			Help: "Experience points awarded.",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_level_ups_total",
			Help: "Level increases.",
		}),
		goalsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_goals_completed_total",
			Help: "Goals completed.",
		}),
		streakUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_streak_changes_total",
			Help: "Daily streak changes.",
		}),
		achievements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_achievements_unlocked_total",
			Help: "Achievements unlocked by rarity.",
		}, []string{"rarity"}),
		badges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_badges_earned_total",
			Help: "Badges earned by badge id.",
		}, []string{"badge"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_profiles_evicted_total",
			Help: "Player profiles evicted by the retention sweep.",
		}),
		cachePurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_report_cache_purged_total",
			Help: "Expired report cache entries purged.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessions, m.xpAwarded, m.levelUps, m.goalsCompleted, m.streakUpdates,
		m.achievements, m.badges, m.evicted, m.cachePurged,
	)
	return m
}

// Observe is an events.Observer.
func (m *Metrics) Observe(ev events.Event) {
	switch ev.Kind {
	case events.SessionTracked:
		m.sessions.Inc()
	case events.XPAwarded:
		m.xpAwarded.Add(float64(ev.XP))
	case events.LevelUp:
		m.levelUps.Inc()
	case events.GoalCompleted:
		m.goalsCompleted.Inc()
	case events.StreakUpdated:
		m.streakUpdates.Inc()
	case events.AchievementUnlocked:
		m.achievements.WithLabelValues(ev.Rarity).Inc()
	case events.BadgeEarned:
		m.badges.WithLabelValues(ev.Ref).Inc()
	}
}

// WatchBus registers m with bus and exports the bus drop count.
func (m *Metrics) WatchBus(bus *events.Bus) {
	bus.Subscribe(m.Observe)
	m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "progress_events_dropped_total",
		Help: "Progress events dropped because the bus buffer was full.",
	}, func() float64 { return float64(bus.Dropped()) }))
}

func (m *Metrics) ProfilesEvicted(n int) { m.evicted.Add(float64(n)) }

func (m *Metrics) CachePurged(n int) { m.cachePurged.Add(float64(n)) }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
