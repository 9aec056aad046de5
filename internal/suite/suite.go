// Package suite is the single entry point for managing prompt templates:
// versioned CRUD over named prompts and their model variants, rendering,
// and history with restore, against whichever backend the suite was opened
// with.
package suite

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/stellarlinkco/prompt-suite/internal/prompt"
	"github.com/stellarlinkco/prompt-suite/internal/store"
)

// Suite owns exactly one storage backend and dispatches every operation to
// it. It keeps no state of its own.
type Suite struct {
	store store.Store
}

// New wraps an already constructed backend.
func New(st store.Store) (*Suite, error) {
	if st == nil {
		return nil, errors.New("suite: nil store")
	}
	return &Suite{store: st}, nil
}

// OpenFile opens a JSON or YAML document store at path.
func OpenFile(path string) (*Suite, error) {
	st, err := store.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return New(st)
}

// OpenSQLite opens a relational store at path.
func OpenSQLite(path string) (*Suite, error) {
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return New(st)
}

// Connect wraps externally supplied backend callbacks.
func Connect(cb store.Callbacks) (*Suite, error) {
	st, err := store.NewAdapterStore(cb)
	if err != nil {
		return nil, err
	}
	return New(st)
}

// CreatePrompt creates a new prompt with one initial model variant. The
// default model falls back to the initial variant when not given.
func (s *Suite) CreatePrompt(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (*prompt.Prompt, error) {
	return s.store.Create(ctx, name, modelName, content, parameters, defaultModel)
}

// GetPrompt fetches an active prompt by name.
func (s *Suite) GetPrompt(ctx context.Context, name string) (*prompt.Prompt, error) {
	return s.store.Get(ctx, name)
}

// BuildPrompt renders a prompt with the given parameter values. An empty
// modelName selects the prompt's default variant.
func (s *Suite) BuildPrompt(ctx context.Context, name string, values map[string]any, modelName string) (string, error) {
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return p.Build(values, modelName)
}

// UpdatePrompt updates prompt metadata: a new name, a new default model, or
// both. Empty arguments leave the corresponding field unchanged.
func (s *Suite) UpdatePrompt(ctx context.Context, name, newName, defaultModel string) (*prompt.Prompt, error) {
	return s.store.Update(ctx, name, newName, defaultModel)
}

// SetDefaultModel changes which variant renders by default.
func (s *Suite) SetDefaultModel(ctx context.Context, name, modelName string) (*prompt.Prompt, error) {
	return s.store.Update(ctx, name, "", modelName)
}

// AddModel adds a new variant to an existing prompt.
func (s *Suite) AddModel(ctx context.Context, name, modelName, content string, parameters []string) (*prompt.Prompt, error) {
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := prompt.NewModel(content, parameters)
	if err != nil {
		return nil, err
	}
	if err := p.AddModel(modelName, m); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, p, store.ActionAddModel, modelName); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateModel replaces an existing variant's content and parameters.
func (s *Suite) UpdateModel(ctx context.Context, name, modelName, content string, parameters []string) (*prompt.Prompt, error) {
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := prompt.NewModel(content, parameters)
	if err != nil {
		return nil, err
	}
	if err := p.UpdateModel(modelName, m); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, p, store.ActionUpdateModel, modelName); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveModel deletes a variant. The default variant cannot be removed
// until the default is reassigned.
func (s *Suite) RemoveModel(ctx context.Context, name, modelName string) (*prompt.Prompt, error) {
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := p.RemoveModel(modelName); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, p, store.ActionRemoveModel, modelName); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePrompt removes a prompt from the active set. The delete is soft:
// history is retained and the prompt can be restored.
func (s *Suite) DeletePrompt(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// RestorePrompt brings a prompt back from history. An empty timestamp
// selects the most recent entry; otherwise the entry's timestamp must match
// exactly.
func (s *Suite) RestorePrompt(ctx context.Context, name, timestamp string) (*prompt.Prompt, error) {
	return s.store.Restore(ctx, name, timestamp)
}

// GetHistory returns history entries, optionally narrowed to one prompt
// name and to entries tagged with one model name.
func (s *Suite) GetHistory(ctx context.Context, name, modelName string) (store.History, error) {
	return s.store.History(ctx, name, modelName)
}

// ClearHistory drops history for one prompt, or for all prompts when name
// is empty. Active prompts are unaffected.
func (s *Suite) ClearHistory(ctx context.Context, name string) error {
	return s.store.ClearHistory(ctx, name)
}

// ListPrompts returns the names of active prompts.
func (s *Suite) ListPrompts(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Backup asks the backend for an out-of-band copy of the active prompt set
// and returns its identifier.
func (s *Suite) Backup(ctx context.Context) (string, error) {
	return s.store.Backup(ctx)
}

// ModelInfo summarizes one variant for PromptInfo.
type ModelInfo struct {
	Parameters  []string  `json:"parameters" yaml:"parameters"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// PromptInfo is the read-only summary returned by GetPromptInfo.
type PromptInfo struct {
	Name         string               `json:"name" yaml:"name"`
	DefaultModel string               `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	Models       []string             `json:"models" yaml:"models"`
	LastUpdated  time.Time            `json:"last_updated" yaml:"last_updated"`
	ModelDetails map[string]ModelInfo `json:"model_details" yaml:"model_details"`
}

// GetPromptInfo returns a summary of a prompt: its variants, default, and
// per-variant parameters and timestamps.
func (s *Suite) GetPromptInfo(ctx context.Context, name string) (*PromptInfo, error) {
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	info := &PromptInfo{
		Name:         p.Name,
		DefaultModel: p.DefaultModel,
		LastUpdated:  p.LastUpdated,
		ModelDetails: make(map[string]ModelInfo, len(p.Models)),
	}
	for modelName, m := range p.Models {
		info.Models = append(info.Models, modelName)
		info.ModelDetails[modelName] = ModelInfo{
			Parameters:  append([]string(nil), m.Parameters...),
			LastUpdated: m.LastUpdated,
		}
	}
	sort.Strings(info.Models)
	return info, nil
}

// SourceInfo describes the backend this suite is bound to.
func (s *Suite) SourceInfo(ctx context.Context) (store.SourceInfo, error) {
	return s.store.Info(ctx)
}

// Close releases the backend.
func (s *Suite) Close() error {
	return s.store.Close()
}
