package prompt

import (
	"fmt"
	"time"
)

// timestampLayout is the wire form for entity timestamps. Nanosecond
// precision keeps history timestamps unique enough for exact-match restore.
const timestampLayout = time.RFC3339Nano

// ModelRecord is the serialized form of a Model, shared by the JSON and YAML
// document encodings and the sqlite JSON columns.
type ModelRecord struct {
	Content     string   `json:"content" yaml:"content"`
	Parameters  []string `json:"parameters" yaml:"parameters"`
	LastUpdated string   `json:"last_updated" yaml:"last_updated"`
}

// Record is the serialized form of a Prompt.
type Record struct {
	Name         string                 `json:"name" yaml:"name"`
	DefaultModel string                 `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	Models       map[string]ModelRecord `json:"models" yaml:"models"`
	LastUpdated  string                 `json:"last_updated" yaml:"last_updated"`
}

// Record converts the prompt to its serialized form.
func (p *Prompt) Record() Record {
	rec := Record{
		Name:         p.Name,
		DefaultModel: p.DefaultModel,
		Models:       make(map[string]ModelRecord, len(p.Models)),
		LastUpdated:  p.LastUpdated.Format(timestampLayout),
	}
	for name, m := range p.Models {
		rec.Models[name] = ModelRecord{
			Content:     m.Content,
			Parameters:  append([]string(nil), m.Parameters...),
			LastUpdated: m.LastUpdated.Format(timestampLayout),
		}
	}
	return rec
}

// FromRecord reconstructs a Prompt, re-running entity validation so a
// corrupt or hand-edited document cannot smuggle in an invalid prompt.
func FromRecord(rec Record) (*Prompt, error) {
	models := make(map[string]*Model, len(rec.Models))
	for name, mr := range rec.Models {
		m, err := NewModel(mr.Content, mr.Parameters)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		m.LastUpdated = parseTimestamp(mr.LastUpdated, m.LastUpdated)
		models[name] = m
	}

	p, err := New(rec.Name, models, rec.DefaultModel)
	if err != nil {
		return nil, err
	}
	p.LastUpdated = parseTimestamp(rec.LastUpdated, p.LastUpdated)
	return p, nil
}

func parseTimestamp(s string, fallback time.Time) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return fallback
	}
	return t
}

// Now returns the current time formatted as a record timestamp.
func Now() string {
	return time.Now().UTC().Format(timestampLayout)
}
