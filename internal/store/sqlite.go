package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stellarlinkco/prompt-suite/internal/prompt"
)

// SQLiteStore implements Store on a relational schema: one row per prompt,
// one row per model variant, append-only history rows, and a backups table.
type SQLiteStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// queryer covers *sql.DB and *sql.Tx for the read helpers.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStore opens or creates a sqlite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS prompts (
			name TEXT PRIMARY KEY,
			default_model TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS models (
			prompt_name TEXT NOT NULL REFERENCES prompts(name) ON DELETE CASCADE,
			model_name TEXT NOT NULL,
			content TEXT NOT NULL,
			parameters TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (prompt_name, model_name)
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			prompt_name TEXT NOT NULL,
			details TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_prompt_name ON history(prompt_name)`,
		`CREATE TABLE IF NOT EXISTS backups (
			backup_name TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (st *SQLiteStore) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	return tx, nil
}

// getRecord reads one prompt and its model rows. Returns ok=false when the
// prompt is not active.
func getRecord(ctx context.Context, q queryer, name string) (prompt.Record, bool, error) {
	var rec prompt.Record
	var defaultModel sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT name, default_model, updated_at FROM prompts WHERE name = ?`, name,
	).Scan(&rec.Name, &defaultModel, &rec.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return prompt.Record{}, false, nil
	}
	if err != nil {
		return prompt.Record{}, false, fmt.Errorf("store: query prompt %q: %w", name, err)
	}
	rec.DefaultModel = defaultModel.String
	rec.Models = make(map[string]prompt.ModelRecord)

	rows, err := q.QueryContext(ctx,
		`SELECT model_name, content, parameters, updated_at FROM models WHERE prompt_name = ?`, name)
	if err != nil {
		return prompt.Record{}, false, fmt.Errorf("store: query models for %q: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var modelName, content, paramsJSON, updatedAt string
		if err := rows.Scan(&modelName, &content, &paramsJSON, &updatedAt); err != nil {
			return prompt.Record{}, false, fmt.Errorf("store: scan model row: %w", err)
		}
		var params []string
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			return prompt.Record{}, false, fmt.Errorf("store: decode parameters for %q/%q: %w", name, modelName, err)
		}
		rec.Models[modelName] = prompt.ModelRecord{
			Content:     content,
			Parameters:  params,
			LastUpdated: updatedAt,
		}
	}
	if err := rows.Err(); err != nil {
		return prompt.Record{}, false, fmt.Errorf("store: iterate model rows: %w", err)
	}
	return rec, true, nil
}

// writeRecord upserts the prompt row and replaces its model rows.
func writeRecord(ctx context.Context, tx *sql.Tx, rec prompt.Record) error {
	now := prompt.Now()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO prompts (name, default_model, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET default_model = excluded.default_model, updated_at = excluded.updated_at`,
		rec.Name, nullable(rec.DefaultModel), now, rec.LastUpdated)
	if err != nil {
		return fmt.Errorf("store: upsert prompt %q: %w", rec.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM models WHERE prompt_name = ?`, rec.Name); err != nil {
		return fmt.Errorf("store: clear models for %q: %w", rec.Name, err)
	}
	for modelName, mr := range rec.Models {
		paramsJSON, err := json.Marshal(mr.Parameters)
		if err != nil {
			return fmt.Errorf("store: encode parameters for %q/%q: %w", rec.Name, modelName, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO models (prompt_name, model_name, content, parameters, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.Name, modelName, mr.Content, string(paramsJSON), now, mr.LastUpdated)
		if err != nil {
			return fmt.Errorf("store: insert model %q/%q: %w", rec.Name, modelName, err)
		}
	}
	return nil
}

func appendHistoryRow(ctx context.Context, tx *sql.Tx, name string, e Entry) error {
	details, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("store: encode history entry: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (action, prompt_name, details, timestamp) VALUES (?, ?, ?, ?)`,
		string(e.Action), name, string(details), e.Timestamp)
	if err != nil {
		return fmt.Errorf("store: insert history for %q: %w", name, err)
	}
	return nil
}

func newEntry(action Action, modelName string, rec prompt.Record) Entry {
	return Entry{
		Timestamp: prompt.Now(),
		Action:    action,
		ModelName: modelName,
		Prompt:    rec,
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (st *SQLiteStore) Create(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (*prompt.Prompt, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	m, err := prompt.NewModel(content, parameters)
	if err != nil {
		return nil, err
	}
	if defaultModel == "" {
		defaultModel = modelName
	}
	p, err := prompt.New(name, map[string]*prompt.Model{modelName: m}, defaultModel)
	if err != nil {
		return nil, err
	}

	tx, err := st.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, ok, err := getRecord(ctx, tx, name); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("prompt %q: %w", name, prompt.ErrExists)
	}

	rec := p.Record()
	if err := writeRecord(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := appendHistoryRow(ctx, tx, name, newEntry(ActionCreate, "", rec)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit create: %w", err)
	}
	return p, nil
}

func (st *SQLiteStore) Get(ctx context.Context, name string) (*prompt.Prompt, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok, err := getRecord(ctx, st.db, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("prompt %q: %w", name, prompt.ErrNotFound)
	}
	return prompt.FromRecord(rec)
}

func (st *SQLiteStore) Update(ctx context.Context, name, newName, defaultModel string) (*prompt.Prompt, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	tx, err := st.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	prior, ok, err := getRecord(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("prompt %q: %w", name, prompt.ErrNotFound)
	}
	p, err := prompt.FromRecord(prior)
	if err != nil {
		return nil, err
	}

	renamed := newName != "" && newName != name
	if renamed {
		if _, ok, err := getRecord(ctx, tx, newName); err != nil {
			return nil, err
		} else if ok {
			return nil, fmt.Errorf("prompt %q: %w", newName, prompt.ErrExists)
		}
		if err := p.Rename(newName); err != nil {
			return nil, err
		}
	}
	if defaultModel != "" {
		if err := p.SetDefaultModel(defaultModel); err != nil {
			return nil, err
		}
	}

	if err := appendHistoryRow(ctx, tx, name, newEntry(ActionUpdateMetadata, "", prior)); err != nil {
		return nil, err
	}
	if renamed {
		// The cascade drops the old model rows along with the old prompt row.
		if _, err := tx.ExecContext(ctx, `DELETE FROM prompts WHERE name = ?`, name); err != nil {
			return nil, fmt.Errorf("store: drop renamed prompt %q: %w", name, err)
		}
	}
	if err := writeRecord(ctx, tx, p.Record()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit update: %w", err)
	}
	return p, nil
}

func (st *SQLiteStore) Delete(ctx context.Context, name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	tx, err := st.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	prior, ok, err := getRecord(ctx, tx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("prompt %q: %w", name, prompt.ErrNotFound)
	}

	if err := appendHistoryRow(ctx, tx, name, newEntry(ActionDelete, "", prior)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM prompts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("store: delete prompt %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit delete: %w", err)
	}
	return nil
}

func (st *SQLiteStore) List(ctx context.Context) ([]string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.listLocked(ctx)
}

func (st *SQLiteStore) Save(ctx context.Context, p *prompt.Prompt, action Action, modelName string) error {
	if p == nil {
		return errors.New("store: nil prompt")
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	tx, err := st.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec := p.Record()
	prior, ok, err := getRecord(ctx, tx, p.Name)
	if err != nil {
		return err
	}
	if !ok {
		prior = rec
	}
	if err := appendHistoryRow(ctx, tx, p.Name, newEntry(action, modelName, prior)); err != nil {
		return err
	}
	if err := writeRecord(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}
	return nil
}

func readEntries(ctx context.Context, q queryer, name string) ([]Entry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT details FROM history WHERE prompt_name = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("store: query history for %q: %w", name, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var details string
		if err := rows.Scan(&details); err != nil {
			return nil, fmt.Errorf("store: scan history row: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(details), &e); err != nil {
			return nil, fmt.Errorf("store: decode history entry for %q: %w", name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate history rows: %w", err)
	}
	return entries, nil
}

func (st *SQLiteStore) Restore(ctx context.Context, name, timestamp string) (*prompt.Prompt, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	entries, err := readEntries(ctx, st.db, name)
	if err != nil {
		return nil, err
	}
	entry, err := selectEntry(name, entries, timestamp)
	if err != nil {
		return nil, err
	}
	p, err := prompt.FromRecord(entry.Prompt)
	if err != nil {
		return nil, fmt.Errorf("store: restore %q: %w", name, err)
	}
	if p.Name != name {
		if err := p.Rename(name); err != nil {
			return nil, err
		}
	}

	tx, err := st.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rec := p.Record()
	if err := writeRecord(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := appendHistoryRow(ctx, tx, name, newEntry(ActionRestore, "", rec)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit restore: %w", err)
	}
	return p, nil
}

func (st *SQLiteStore) History(ctx context.Context, name, modelName string) (History, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make(History)
	if name != "" {
		entries, err := readEntries(ctx, st.db, name)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			out[name] = filterEntries(entries, modelName)
		}
		return out, nil
	}

	rows, err := st.db.QueryContext(ctx, `SELECT prompt_name, details FROM history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var promptName, details string
		if err := rows.Scan(&promptName, &details); err != nil {
			return nil, fmt.Errorf("store: scan history row: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(details), &e); err != nil {
			return nil, fmt.Errorf("store: decode history entry for %q: %w", promptName, err)
		}
		out[promptName] = append(out[promptName], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate history rows: %w", err)
	}
	if modelName != "" {
		for n, entries := range out {
			out[n] = filterEntries(entries, modelName)
		}
	}
	return out, nil
}

func (st *SQLiteStore) ClearHistory(ctx context.Context, name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var err error
	if name == "" {
		_, err = st.db.ExecContext(ctx, `DELETE FROM history`)
	} else {
		_, err = st.db.ExecContext(ctx, `DELETE FROM history WHERE prompt_name = ?`, name)
	}
	if err != nil {
		return fmt.Errorf("store: clear history: %w", err)
	}
	return nil
}

// Backup snapshots the active prompt set into the backups table and returns
// the generated backup name.
func (st *SQLiteStore) Backup(ctx context.Context) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	names, err := st.listLocked(ctx)
	if err != nil {
		return "", err
	}
	data := make(map[string]prompt.Record, len(names))
	for _, name := range names {
		rec, ok, err := getRecord(ctx, st.db, name)
		if err != nil {
			return "", err
		}
		if ok {
			data[name] = rec
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("store: encode backup: %w", err)
	}
	backupName := fmt.Sprintf("backup_%s_%s",
		time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO backups (backup_name, data, created_at) VALUES (?, ?, ?)`,
		backupName, string(b), prompt.Now())
	if err != nil {
		return "", fmt.Errorf("store: insert backup: %w", err)
	}
	return backupName, nil
}

// listLocked is List without re-taking the mutex.
func (st *SQLiteStore) listLocked(ctx context.Context) ([]string, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT name FROM prompts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("store: list prompts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scan prompt name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (st *SQLiteStore) Info(ctx context.Context) (SourceInfo, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var promptCount, historyCount int
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompts`).Scan(&promptCount); err != nil {
		return SourceInfo{}, fmt.Errorf("store: count prompts: %w", err)
	}
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&historyCount); err != nil {
		return SourceInfo{}, fmt.Errorf("store: count history: %w", err)
	}
	return SourceInfo{
		Mode:        "sqlite",
		Path:        st.path,
		Format:      "sqlite",
		PromptCount: promptCount,
		HasHistory:  historyCount > 0,
	}, nil
}

func (st *SQLiteStore) Close() error {
	if st == nil || st.db == nil {
		return nil
	}
	return st.db.Close()
}
