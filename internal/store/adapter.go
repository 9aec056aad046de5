package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stellarlinkco/prompt-suite/internal/prompt"
)

// Callbacks is the fixed set of externally supplied functions an
// AdapterStore drives. Create, Get, Update, Delete, List, and Save are
// required; History, ClearHistory, and Backup are optional capabilities — a
// nil field degrades to empty-result, no-op, and ErrBackupUnavailable
// respectively.
//
// A callback may return the normalized entity, a raw map convertible to one,
// or nil (in which case the adapter re-fetches or falls back to the locally
// constructed entity).
type Callbacks struct {
	Name string

	Create func(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (any, error)
	Get    func(ctx context.Context, name string) (any, error)
	Update func(ctx context.Context, name, newName, defaultModel string) (any, error)
	Delete func(ctx context.Context, name string) error
	List   func(ctx context.Context) ([]string, error)
	Save   func(ctx context.Context, rec prompt.Record, action Action, modelName string) error

	History      func(ctx context.Context, name, modelName string) (History, error)
	ClearHistory func(ctx context.Context, name string) error
	Backup       func(ctx context.Context) (string, error)
}

// AdapterStore implements Store by delegating every operation to externally
// supplied callbacks. Calls are synchronous: each method returns only after
// the underlying callback has completed.
type AdapterStore struct {
	mu sync.Mutex
	cb Callbacks
}

// NewAdapterStore validates that all required callbacks are present.
func NewAdapterStore(cb Callbacks) (*AdapterStore, error) {
	required := []struct {
		name string
		ok   bool
	}{
		{"create", cb.Create != nil},
		{"get", cb.Get != nil},
		{"update", cb.Update != nil},
		{"delete", cb.Delete != nil},
		{"list", cb.List != nil},
		{"save", cb.Save != nil},
	}
	for _, r := range required {
		if !r.ok {
			return nil, fmt.Errorf("store: adapter %q: missing required %s callback", cb.Name, r.name)
		}
	}
	return &AdapterStore{cb: cb}, nil
}

// normalize converts a callback result into the canonical entity. The
// accepted representations form a closed set; nil means "nothing returned"
// and is reported via ok=false, not an error.
func normalize(result any) (*prompt.Prompt, bool, error) {
	switch v := result.(type) {
	case nil:
		return nil, false, nil
	case *prompt.Prompt:
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	case prompt.Prompt:
		return &v, true, nil
	case prompt.Record:
		p, err := prompt.FromRecord(v)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	case map[string]any:
		rec, err := recordFromMap(v)
		if err != nil {
			return nil, false, err
		}
		p, err := prompt.FromRecord(rec)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	default:
		return nil, false, fmt.Errorf("store: adapter returned unsupported type %T", result)
	}
}

// recordFromMap converts a raw mapping into a Record.
func recordFromMap(data map[string]any) (prompt.Record, error) {
	rec := prompt.Record{Models: make(map[string]prompt.ModelRecord)}

	if v, ok := data["name"].(string); ok {
		rec.Name = v
	}
	if v, ok := data["default_model"].(string); ok {
		rec.DefaultModel = v
	}
	if v, ok := data["last_updated"].(string); ok {
		rec.LastUpdated = v
	}

	models, ok := data["models"].(map[string]any)
	if !ok {
		return prompt.Record{}, errors.New("store: adapter mapping has no models")
	}
	for modelName, raw := range models {
		md, ok := raw.(map[string]any)
		if !ok {
			return prompt.Record{}, fmt.Errorf("store: adapter mapping model %q is not a mapping", modelName)
		}
		mr := prompt.ModelRecord{}
		if v, ok := md["content"].(string); ok {
			mr.Content = v
		}
		if v, ok := md["last_updated"].(string); ok {
			mr.LastUpdated = v
		}
		switch params := md["parameters"].(type) {
		case []string:
			mr.Parameters = append([]string(nil), params...)
		case []any:
			for _, p := range params {
				s, ok := p.(string)
				if !ok {
					return prompt.Record{}, fmt.Errorf("store: adapter mapping model %q has non-string parameter", modelName)
				}
				mr.Parameters = append(mr.Parameters, s)
			}
		case nil:
		default:
			return prompt.Record{}, fmt.Errorf("store: adapter mapping model %q has unsupported parameters type %T", modelName, params)
		}
		rec.Models[modelName] = mr
	}
	return rec, nil
}

func (a *AdapterStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Op: op, Err: err}
}

func (a *AdapterStore) Create(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (*prompt.Prompt, error) {
	// Validate locally first so malformed input never reaches the backend.
	m, err := prompt.NewModel(content, parameters)
	if err != nil {
		return nil, err
	}
	if defaultModel == "" {
		defaultModel = modelName
	}
	local, err := prompt.New(name, map[string]*prompt.Model{modelName: m}, defaultModel)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.cb.Create(ctx, name, modelName, content, parameters, defaultModel)
	if err != nil {
		return nil, a.wrap("create", err)
	}
	p, ok, err := normalize(result)
	if err != nil {
		return nil, a.wrap("create", err)
	}
	if !ok {
		return local, nil
	}
	return p, nil
}

func (a *AdapterStore) Get(ctx context.Context, name string) (*prompt.Prompt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.get(ctx, name)
}

// get is Get without re-taking the mutex.
func (a *AdapterStore) get(ctx context.Context, name string) (*prompt.Prompt, error) {
	result, err := a.cb.Get(ctx, name)
	if err != nil {
		return nil, a.wrap("get", err)
	}
	p, ok, err := normalize(result)
	if err != nil {
		return nil, a.wrap("get", err)
	}
	if !ok {
		return nil, fmt.Errorf("prompt %q: %w", name, prompt.ErrNotFound)
	}
	return p, nil
}

func (a *AdapterStore) Update(ctx context.Context, name, newName, defaultModel string) (*prompt.Prompt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.cb.Update(ctx, name, newName, defaultModel)
	if err != nil {
		return nil, a.wrap("update", err)
	}
	p, ok, err := normalize(result)
	if err != nil {
		return nil, a.wrap("update", err)
	}
	if ok {
		return p, nil
	}
	// Nothing returned: re-fetch the updated prompt.
	if newName != "" {
		name = newName
	}
	return a.get(ctx, name)
}

func (a *AdapterStore) Delete(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wrap("delete", a.cb.Delete(ctx, name))
}

func (a *AdapterStore) List(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	names, err := a.cb.List(ctx)
	if err != nil {
		return nil, a.wrap("list", err)
	}
	return names, nil
}

func (a *AdapterStore) Save(ctx context.Context, p *prompt.Prompt, action Action, modelName string) error {
	if p == nil {
		return errors.New("store: nil prompt")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wrap("save", a.cb.Save(ctx, p.Record(), action, modelName))
}

// Restore delegates to the backend's own notion of current state: without
// history access the adapter can only re-fetch.
func (a *AdapterStore) Restore(ctx context.Context, name, timestamp string) (*prompt.Prompt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.get(ctx, name)
}

func (a *AdapterStore) History(ctx context.Context, name, modelName string) (History, error) {
	if a.cb.History == nil {
		return make(History), nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	hist, err := a.cb.History(ctx, name, modelName)
	if err != nil {
		return nil, a.wrap("history", err)
	}
	if hist == nil {
		hist = make(History)
	}
	return hist, nil
}

func (a *AdapterStore) ClearHistory(ctx context.Context, name string) error {
	if a.cb.ClearHistory == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wrap("clear_history", a.cb.ClearHistory(ctx, name))
}

func (a *AdapterStore) Backup(ctx context.Context) (string, error) {
	if a.cb.Backup == nil {
		return "", fmt.Errorf("store: adapter %q: %w", a.cb.Name, ErrBackupUnavailable)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	id, err := a.cb.Backup(ctx)
	if err != nil {
		return "", a.wrap("backup", err)
	}
	return id, nil
}

func (a *AdapterStore) Info(ctx context.Context) (SourceInfo, error) {
	info := SourceInfo{Mode: "adapter"}
	names, err := a.List(ctx)
	if err == nil {
		info.PromptCount = len(names)
	}
	return info, nil
}

func (a *AdapterStore) Close() error {
	return nil
}
