package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellarlinkco/prompt-suite/internal/prompt"
)

// Action tags a history entry with the operation that produced it.
type Action string

const (
	ActionCreate         Action = "create"
	ActionUpdateMetadata Action = "update_metadata"
	ActionUpdateModel    Action = "update_model"
	ActionAddModel       Action = "add_model"
	ActionRemoveModel    Action = "remove_model"
	ActionDelete         Action = "delete"
	ActionRestore        Action = "restore"
	ActionSave           Action = "save"
)

// Entry is one append-only history record for a prompt. Mutations capture
// the state persisted before the mutation; create and restore capture the
// new state, since there is no prior one.
type Entry struct {
	Timestamp string        `json:"timestamp" yaml:"timestamp"`
	Action    Action        `json:"action" yaml:"action"`
	ModelName string        `json:"model_name,omitempty" yaml:"model_name,omitempty"`
	Prompt    prompt.Record `json:"prompt_data" yaml:"prompt_data"`
}

// History is an ordered sequence of entries per prompt name.
type History map[string][]Entry

// SourceInfo describes the backend a store is bound to.
type SourceInfo struct {
	Mode        string `json:"mode" yaml:"mode"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	PromptCount int    `json:"prompt_count" yaml:"prompt_count"`
	HasHistory  bool   `json:"has_history" yaml:"has_history"`
}

var (
	// ErrHistoryNotFound indicates a restore found no history for a name,
	// or no entry matching the requested timestamp.
	ErrHistoryNotFound = errors.New("history entry not found")

	// ErrFileFormat indicates an unsupported file extension or an
	// unreadable document.
	ErrFileFormat = errors.New("unsupported file format")

	// ErrBackupUnavailable indicates the backend cannot produce a backup.
	ErrBackupUnavailable = errors.New("backup unavailable")
)

// AdapterError wraps a failure surfaced by a callback backend.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("store: adapter %s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Store is the persistence contract shared by the file, sqlite, and adapter
// backends. Delete is soft: the active entry goes away, history stays.
type Store interface {
	Create(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (*prompt.Prompt, error)
	Get(ctx context.Context, name string) (*prompt.Prompt, error)
	Update(ctx context.Context, name, newName, defaultModel string) (*prompt.Prompt, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)

	// Save overwrites a prompt's persisted form. The action and model name
	// tag the history entry appended alongside the write.
	Save(ctx context.Context, p *prompt.Prompt, action Action, modelName string) error

	Restore(ctx context.Context, name, timestamp string) (*prompt.Prompt, error)
	History(ctx context.Context, name, modelName string) (History, error)
	ClearHistory(ctx context.Context, name string) error

	// Backup produces an out-of-band copy of the active prompt set and
	// returns an opaque identifier for it.
	Backup(ctx context.Context) (string, error)

	Info(ctx context.Context) (SourceInfo, error)
	Close() error
}

// filterEntries keeps entries tagged with the given model name, preserving
// order. An empty filter keeps everything.
func filterEntries(entries []Entry, modelName string) []Entry {
	if modelName == "" {
		return append([]Entry(nil), entries...)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ModelName == modelName {
			out = append(out, e)
		}
	}
	return out
}

// selectEntry resolves a restore target: the latest entry when timestamp is
// empty, otherwise the entry whose timestamp matches exactly.
func selectEntry(name string, entries []Entry, timestamp string) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("store: no history for prompt %q: %w", name, ErrHistoryNotFound)
	}
	if timestamp == "" {
		return entries[len(entries)-1], nil
	}
	for _, e := range entries {
		if e.Timestamp == timestamp {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("store: prompt %q has no history entry at %q: %w", name, timestamp, ErrHistoryNotFound)
}
