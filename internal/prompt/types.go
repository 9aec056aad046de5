package prompt

import (
	"fmt"
	"strings"
	"time"
)

// invalidNameChars are rejected in prompt names so a name is always safe to
// use as part of a file path.
const invalidNameChars = `/\:*?"<>|`

// Model is one renderable template variant of a prompt: its content plus the
// parameters the content requires.
type Model struct {
	Content     string
	Parameters  []string
	LastUpdated time.Time
}

// NewModel validates and constructs a model variant. The content must be
// non-blank, the parameters non-blank and unique, and the template's
// placeholders must match the declared parameters exactly.
func NewModel(content string, parameters []string) (*Model, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Reason: "content must be a non-empty string"}
	}
	seen := make(map[string]struct{}, len(parameters))
	for _, p := range parameters {
		if strings.TrimSpace(p) == "" {
			return nil, &ValidationError{Reason: "parameters must be non-empty strings"}
		}
		if _, ok := seen[p]; ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("duplicate parameter %q", p)}
		}
		seen[p] = struct{}{}
	}
	if err := ValidateTemplate(content, parameters); err != nil {
		return nil, err
	}
	return &Model{
		Content:     content,
		Parameters:  append([]string(nil), parameters...),
		LastUpdated: time.Now().UTC(),
	}, nil
}

// Build renders the model's content with the given values.
func (m *Model) Build(values map[string]any) (string, error) {
	if m == nil {
		return "", &ValidationError{Reason: "nil model"}
	}
	return Render(m.Content, m.Parameters, values)
}

func (m *Model) clone() *Model {
	if m == nil {
		return nil
	}
	return &Model{
		Content:     m.Content,
		Parameters:  append([]string(nil), m.Parameters...),
		LastUpdated: m.LastUpdated,
	}
}

// Prompt groups named model variants under one prompt name.
type Prompt struct {
	Name         string
	Models       map[string]*Model
	DefaultModel string
	LastUpdated  time.Time
}

// New validates and constructs a prompt. Checks run in order: name, models
// (at least one, names non-blank, every template valid), then the default
// model, which must be one of the models when set.
func New(name string, models map[string]*Model, defaultModel string) (*Prompt, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, &ValidationError{Reason: "at least one model is required"}
	}
	for modelName, m := range models {
		if strings.TrimSpace(modelName) == "" {
			return nil, &ValidationError{Reason: "model names must be non-empty strings"}
		}
		if m == nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("model %q is nil", modelName)}
		}
		if err := ValidateTemplate(m.Content, m.Parameters); err != nil {
			return nil, err
		}
	}
	if defaultModel != "" {
		if _, ok := models[defaultModel]; !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("default model %q is not one of the models", defaultModel)}
		}
	}

	out := &Prompt{
		Name:         name,
		Models:       make(map[string]*Model, len(models)),
		DefaultModel: defaultModel,
		LastUpdated:  time.Now().UTC(),
	}
	for modelName, m := range models {
		out.Models[modelName] = m.clone()
	}
	return out, nil
}

// ValidateName rejects blank prompt names and names containing path-hostile
// characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: "name must be a non-empty string"}
	}
	if i := strings.IndexAny(name, invalidNameChars); i >= 0 {
		return &ValidationError{Reason: fmt.Sprintf("name must not contain %q", name[i])}
	}
	return nil
}

// Model resolves a variant by name. An empty name selects the default model;
// with no default set that fails with ErrInvalidOperation.
func (p *Prompt) Model(name string) (*Model, error) {
	if p == nil {
		return nil, &ValidationError{Reason: "nil prompt"}
	}
	if name == "" {
		if p.DefaultModel == "" {
			return nil, fmt.Errorf("prompt %q has no default model: %w", p.Name, ErrInvalidOperation)
		}
		name = p.DefaultModel
	}
	m, ok := p.Models[name]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", name, ErrModelNotFound)
	}
	return m, nil
}

// Build renders the named variant (or the default when modelName is empty)
// with the given values.
func (p *Prompt) Build(values map[string]any, modelName string) (string, error) {
	m, err := p.Model(modelName)
	if err != nil {
		return "", err
	}
	return m.Build(values)
}

// AddModel inserts a new variant. The name must not already be present.
func (p *Prompt) AddModel(name string, m *Model) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: "model name must be a non-empty string"}
	}
	if _, ok := p.Models[name]; ok {
		return fmt.Errorf("model %q: %w", name, ErrExists)
	}
	if m == nil {
		return &ValidationError{Reason: "nil model"}
	}
	if err := ValidateTemplate(m.Content, m.Parameters); err != nil {
		return err
	}
	if p.Models == nil {
		p.Models = make(map[string]*Model, 1)
	}
	p.Models[name] = m.clone()
	p.touch()
	return nil
}

// UpdateModel replaces an existing variant wholesale.
func (p *Prompt) UpdateModel(name string, m *Model) error {
	if _, ok := p.Models[name]; !ok {
		return fmt.Errorf("model %q: %w", name, ErrModelNotFound)
	}
	if m == nil {
		return &ValidationError{Reason: "nil model"}
	}
	if err := ValidateTemplate(m.Content, m.Parameters); err != nil {
		return err
	}
	p.Models[name] = m.clone()
	p.touch()
	return nil
}

// RemoveModel deletes a variant. Removing the current default fails with
// ErrInvalidOperation; reassign the default first.
func (p *Prompt) RemoveModel(name string) error {
	if _, ok := p.Models[name]; !ok {
		return fmt.Errorf("model %q: %w", name, ErrModelNotFound)
	}
	if p.DefaultModel == name {
		return fmt.Errorf("model %q is the default model: %w", name, ErrInvalidOperation)
	}
	delete(p.Models, name)
	p.touch()
	return nil
}

// SetDefaultModel points the default at an existing variant.
func (p *Prompt) SetDefaultModel(name string) error {
	if _, ok := p.Models[name]; !ok {
		return fmt.Errorf("model %q: %w", name, ErrModelNotFound)
	}
	p.DefaultModel = name
	p.touch()
	return nil
}

// Rename changes the prompt's name. Uniqueness inside a store is the store's
// concern.
func (p *Prompt) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	p.Name = name
	p.touch()
	return nil
}

// ModelNames returns the variant names in sorted order.
func (p *Prompt) ModelNames() []string {
	names := make(map[string]struct{}, len(p.Models))
	for name := range p.Models {
		names[name] = struct{}{}
	}
	return sortedKeys(names)
}

// Clone returns a deep copy.
func (p *Prompt) Clone() *Prompt {
	if p == nil {
		return nil
	}
	out := &Prompt{
		Name:         p.Name,
		Models:       make(map[string]*Model, len(p.Models)),
		DefaultModel: p.DefaultModel,
		LastUpdated:  p.LastUpdated,
	}
	for name, m := range p.Models {
		out.Models[name] = m.clone()
	}
	return out
}

func (p *Prompt) touch() {
	p.LastUpdated = time.Now().UTC()
}
