package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"sort"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB keeps goals, achievements and per-owner progress stats in Postgres.
// It satisfies goals.Store and goals.Ranker.
type DB struct {
	conn *sql.DB
}

// Connect opens the progress store. Writes for one owner are serialised by
// the goals service, so a small pool is enough.
func Connect(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening progress store: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("reaching progress store: %w", err)
	}
	log.Println("[DB] Progress store connected")
	return &DB{conn: conn}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

// Migrate brings the progress schema up to date. Every script is written to
// be re-run, so all of them are applied in name order on each start, each in
// its own transaction. It returns the scripts applied.
func (d *DB) Migrate(ctx context.Context) ([]string, error) {
	scripts, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("listing schema scripts: %w", err)
	}
	names := make([]string, 0, len(scripts))
	for _, s := range scripts {
		names = append(names, s.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := d.applyScript(ctx, name); err != nil {
			return nil, err
		}
	}
	log.Printf("[DB] Progress schema current (%d scripts, last %s)\n", len(names), names[len(names)-1])
	return names, nil
}

func (d *DB) applyScript(ctx context.Context, name string) error {
	body, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("reading schema script %s: %w", name, err)
	}
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schema script %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		tx.Rollback()
		return fmt.Errorf("schema script %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema script %s: %w", name, err)
	}
	return nil
}
