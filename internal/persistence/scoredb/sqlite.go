// Package scoredb is the durable side of finalize: finished runs land in a
// sqlite file through a single writer goroutine, and a small read model
// serves the leaderboard. It may hard-reject a run it judges tampered; the
// simulation itself never does.
package scoredb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/tuning"
)

type Store struct {
	db  *sql.DB
	cfg tuning.Cheat

	ch   chan runRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	rejected atomic.Uint64
}

type runRow struct {
	SessionID  string
	Stats      game.FinalStats
	RecordedAt string
}

// Entry is one leaderboard row.
type Entry struct {
	SessionID  string  `json:"sessionId"`
	Score      int     `json:"score"`
	Distance   float64 `json:"distance"`
	Result     string  `json:"result"`
	RecordedAt string  `json:"recordedAt"`
}

func Open(path string, cheat tuning.Cheat) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:  db,
		cfg: cheat,
		ch:  make(chan runRow, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only run log.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			distance REAL NOT NULL,
			duration_ticks INTEGER NOT NULL,
			coins INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			powerups INTEGER NOT NULL,
			result TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Finalize accepts one finished run. A score out of proportion to the run's
// duration is rejected outright.
func (s *Store) Finalize(sessionID string, stats game.FinalStats) error {
	if s.closed.Load() {
		return fmt.Errorf("scoredb closed")
	}
	if err := s.vet(stats); err != nil {
		s.rejected.Add(1)
		return err
	}
	row := runRow{
		SessionID:  sessionID,
		Stats:      stats,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case s.ch <- row:
		return nil
	default:
		return fmt.Errorf("scoredb queue full")
	}
}

func (s *Store) vet(stats game.FinalStats) error {
	seconds := int(stats.DurationTicks) / 60
	if seconds < 1 {
		seconds = 1
	}
	if lim := s.cfg.ScorePerSecondCap*seconds + s.cfg.ScoreGrace; stats.Score > lim {
		return fmt.Errorf("score %d exceeds ceiling %d for %ds run", stats.Score, lim, seconds)
	}
	if lim := s.cfg.MaxCoinsPerSecond * seconds; stats.Coins > lim {
		return fmt.Errorf("coins %d exceed ceiling %d for %ds run", stats.Coins, lim, seconds)
	}
	return nil
}

// Rejected reports how many finalize calls were refused as tampered.
func (s *Store) Rejected() uint64 { return s.rejected.Load() }

func (s *Store) loop() {
	for row := range s.ch {
		_, err := s.db.Exec(
			`INSERT INTO runs (session_id, score, distance, duration_ticks, coins, hits, powerups, result, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.SessionID,
			row.Stats.Score,
			row.Stats.Distance,
			row.Stats.DurationTicks,
			row.Stats.Coins,
			row.Stats.Hits,
			row.Stats.Powerups,
			string(row.Stats.Result),
			row.RecordedAt,
		)
		_ = err // a failed insert loses one row, never the process
	}
}

// Top returns the best runs by score.
func (s *Store) Top(n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.Query(
		`SELECT session_id, score, distance, result, recorded_at
		 FROM runs ORDER BY score DESC, id ASC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SessionID, &e.Score, &e.Distance, &e.Result, &e.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
