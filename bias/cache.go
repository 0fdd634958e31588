package bias

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"yashubustudio/biaslab/internal/fsutil"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS labels (
	key        TEXT PRIMARY KEY,
	model_id   TEXT NOT NULL,
	label      TEXT NOT NULL,
	score      REAL NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	rows        INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);
`

// LabelCache remembers predictions per (model, text) in memory and in a
// sqlite file so repeated runs skip the model for responses already seen.
type LabelCache struct {
	db      *sql.DB
	modelID string

	mu  sync.RWMutex
	mem map[string]string
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	Command    string
	StartedAt  time.Time
	FinishedAt time.Time
	Rows       int
	Failed     int
}

// OpenLabelCache opens or creates the cache database at path.
func OpenLabelCache(ctx context.Context, path, modelID string) (*LabelCache, error) {
	if err := fsutil.EnsureParent(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open label cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure label cache: %w", err)
	}
	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create label cache schema: %w", err)
	}
	return &LabelCache{db: db, modelID: modelID, mem: make(map[string]string)}, nil
}

// Close closes the database.
func (c *LabelCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached label for text.
func (c *LabelCache) Get(ctx context.Context, text string) (string, bool, error) {
	key := c.cacheKey(text)
	c.mu.RLock()
	label, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return label, true, nil
	}
	err := c.db.QueryRowContext(ctx, "SELECT label FROM labels WHERE key = ?", key).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query label cache: %w", err)
	}
	c.storeInMemory(key, label)
	return label, true, nil
}

// Put stores a prediction for text.
func (c *LabelCache) Put(ctx context.Context, text string, pred Prediction) error {
	key := c.cacheKey(text)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO labels (key, model_id, label, score, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET label = excluded.label, score = excluded.score, created_at = excluded.created_at`,
		key, c.modelID, pred.Label, float64(pred.Score), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store label: %w", err)
	}
	c.storeInMemory(key, pred.Label)
	return nil
}

// Len returns how many labels are stored on disk.
func (c *LabelCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM labels").Scan(&n); err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return n, nil
}

// RecordRun appends a finished run to the runs table.
func (c *LabelCache) RecordRun(ctx context.Context, run Run) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO runs (id, command, started_at, finished_at, rows, failed) VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.Command,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Rows, run.Failed)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Runs lists recorded runs, newest first.
func (c *LabelCache) Runs(ctx context.Context) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, command, started_at, finished_at, rows, failed FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Command, &started, &finished, &r.Rows, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *LabelCache) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *LabelCache) storeInMemory(key, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[key] = label
}
