package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"

	"playerprogress/internal/analytics"
	"playerprogress/internal/badges"
	"playerprogress/internal/broadcast"
	"playerprogress/internal/cache"
	"playerprogress/internal/config"
	"playerprogress/internal/db"
	"playerprogress/internal/events"
	"playerprogress/internal/goals"
	"playerprogress/internal/metrics"
	"playerprogress/internal/players"
	"playerprogress/internal/reports"
	"playerprogress/internal/store"
	"playerprogress/internal/wshub"
)

func Run() error {
	appCfg := config.Load()
	ctx := context.Background()

	srv := &Server{}

	// Optional database connection
	var goalStore analytics.Source = store.NewMemory()
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running with in-memory store)\n", err)
		} else if _, err := database.Migrate(ctx); err != nil {
			log.Printf("[DB] Migration failed: %v (running with in-memory store)\n", err)
			database.Close()
		} else {
			srv.DB = database
			goalStore = database
			log.Println("[DB] Using Postgres progress store")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running with in-memory store")
	}

	// Optional redis report cache
	mem := cache.NewMemory()
	var reportCache cache.Cache = mem
	if appCfg.RedisAddr != "" {
		client, err := cache.OpenRedis(ctx, appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisDB)
		if err != nil {
			log.Printf("[Cache] Redis unavailable: %v (using in-memory cache)\n", err)
		} else {
			srv.Redis = client
			reportCache = cache.NewRedis(client, "progress:")
			log.Printf("[Cache] Using redis at %s\n", appCfg.RedisAddr)
		}
	}

	bus := events.NewBus(256)
	defer bus.Close()

	srv.Metrics = metrics.New()
	srv.Metrics.WatchBus(bus)
	srv.Broadcaster = broadcast.NewBroadcaster(bus)
	srv.Hub = wshub.NewHub(bus)

	srv.Goals = goals.NewService(goalStore, bus, appCfg.Location)
	srv.Analytics = analytics.NewQueries(goalStore)
	srv.Reports = reports.NewTracker(
		players.NewStore(appCfg.Retention(), appCfg.MaxSnapshots),
		badges.NewEngine(appCfg.WeeklyMVPMin),
		reportCache,
		appCfg.ReportCacheTTL,
		srv.Goals,
	)

	sched, err := startSweeper(srv, mem, appCfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Shutdown()

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, srv.Routes())
}

// startSweeper runs retention over the player working set and purges expired
// in-memory cache entries every interval.
func startSweeper(srv *Server, mem *cache.Memory, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			evicted := srv.Reports.Sweep(ctx)
			purged := mem.Purge()
			srv.Metrics.ProfilesEvicted(len(evicted))
			srv.Metrics.CachePurged(purged)
			if len(evicted) > 0 || purged > 0 {
				log.Printf("[Scheduler] Evicted %d profiles, purged %d cache entries\n", len(evicted), purged)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("adding sweep job: %w", err)
	}
	sched.Start()
	return sched, nil
}
