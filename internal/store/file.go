package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stellarlinkco/prompt-suite/internal/prompt"
)

// document is the single on-disk structure a FileStore maintains. Both
// encodings serialize this exact schema.
type document struct {
	Prompts map[string]prompt.Record `json:"prompts" yaml:"prompts"`
	History History                  `json:"history" yaml:"history"`
}

type codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// DetectFormat maps a file extension to a document format.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("store: %q: %w", filepath.Ext(path), ErrFileFormat)
	}
}

// FileStore persists the whole prompt set and history as one JSON or YAML
// document, fully rewritten on every mutation.
type FileStore struct {
	mu     sync.Mutex
	path   string
	format string
	codec  codec
	doc    document
}

// OpenFile opens or creates a document store at path. The format comes from
// the extension; anything but .json/.yaml/.yml fails with ErrFileFormat.
func OpenFile(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty file path")
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("store: resolve %q: %w", path, err)
	}
	if dir := filepath.Dir(abs); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir for %q: %w", abs, err)
		}
	}

	fs := &FileStore{path: abs, format: format}
	if format == "json" {
		fs.codec = jsonCodec{}
	} else {
		fs.codec = yamlCodec{}
	}

	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	fs.doc = document{
		Prompts: make(map[string]prompt.Record),
		History: make(History),
	}

	b, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %q: %w", fs.path, err)
	}
	if len(b) == 0 {
		return nil
	}

	var doc document
	if err := fs.codec.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("store: parse %q: %v: %w", fs.path, err, ErrFileFormat)
	}
	if doc.Prompts != nil {
		fs.doc.Prompts = doc.Prompts
	}
	if doc.History != nil {
		fs.doc.History = doc.History
	}
	return nil
}

// persist rewrites the whole document. Callers hold fs.mu.
func (fs *FileStore) persist() error {
	b, err := fs.codec.Marshal(fs.doc)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", fs.path, err)
	}
	if err := os.WriteFile(fs.path, b, 0o644); err != nil {
		return fmt.Errorf("store: write %q: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStore) appendHistory(name string, action Action, modelName string, rec prompt.Record) {
	fs.doc.History[name] = append(fs.doc.History[name], Entry{
		Timestamp: prompt.Now(),
		Action:    action,
		ModelName: modelName,
		Prompt:    rec,
	})
}

func (fs *FileStore) Create(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (*prompt.Prompt, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.doc.Prompts[name]; ok {
		return nil, fmt.Errorf("prompt %q: %w", name, prompt.ErrExists)
	}

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

	rec := p.Record()
	fs.doc.Prompts[name] = rec
	fs.appendHistory(name, ActionCreate, "", rec)
	if err := fs.persist(); err != nil {
		return nil, err
	}
	return p, nil
}

func (fs *FileStore) Get(ctx context.Context, name string) (*prompt.Prompt, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.get(name)
}

// get resolves an active prompt. Callers hold fs.mu.
func (fs *FileStore) get(name string) (*prompt.Prompt, error) {
	rec, ok := fs.doc.Prompts[name]
	if !ok {
		return nil, fmt.Errorf("prompt %q: %w", name, prompt.ErrNotFound)
	}
	return prompt.FromRecord(rec)
}

func (fs *FileStore) Update(ctx context.Context, name, newName, defaultModel string) (*prompt.Prompt, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	p, err := fs.get(name)
	if err != nil {
		return nil, err
	}
	prior := fs.doc.Prompts[name]

	if newName != "" && newName != name {
		if _, ok := fs.doc.Prompts[newName]; ok {
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

	fs.appendHistory(name, ActionUpdateMetadata, "", prior)
	delete(fs.doc.Prompts, name)
	fs.doc.Prompts[p.Name] = p.Record()
	if err := fs.persist(); err != nil {
		return nil, err
	}
	return p, nil
}

func (fs *FileStore) Delete(ctx context.Context, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec, ok := fs.doc.Prompts[name]
	if !ok {
		return fmt.Errorf("prompt %q: %w", name, prompt.ErrNotFound)
	}

	fs.appendHistory(name, ActionDelete, "", rec)
	delete(fs.doc.Prompts, name)
	return fs.persist()
}

func (fs *FileStore) List(ctx context.Context) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	names := make([]string, 0, len(fs.doc.Prompts))
	for name := range fs.doc.Prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (fs *FileStore) Save(ctx context.Context, p *prompt.Prompt, action Action, modelName string) error {
	if p == nil {
		return errors.New("store: nil prompt")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec := p.Record()
	if prior, ok := fs.doc.Prompts[p.Name]; ok {
		fs.appendHistory(p.Name, action, modelName, prior)
	} else {
		fs.appendHistory(p.Name, action, modelName, rec)
	}
	fs.doc.Prompts[p.Name] = rec
	return fs.persist()
}

func (fs *FileStore) Restore(ctx context.Context, name, timestamp string) (*prompt.Prompt, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, err := selectEntry(name, fs.doc.History[name], timestamp)
	if err != nil {
		return nil, err
	}
	p, err := prompt.FromRecord(entry.Prompt)
	if err != nil {
		return nil, fmt.Errorf("store: restore %q: %w", name, err)
	}
	// The snapshot may predate a rename; the restored prompt lives under the
	// requested name.
	if p.Name != name {
		if err := p.Rename(name); err != nil {
			return nil, err
		}
	}

	rec := p.Record()
	fs.doc.Prompts[name] = rec
	fs.appendHistory(name, ActionRestore, "", rec)
	if err := fs.persist(); err != nil {
		return nil, err
	}
	return p, nil
}

func (fs *FileStore) History(ctx context.Context, name, modelName string) (History, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make(History)
	if name != "" {
		if entries, ok := fs.doc.History[name]; ok {
			out[name] = filterEntries(entries, modelName)
		}
		return out, nil
	}
	for n, entries := range fs.doc.History {
		out[n] = filterEntries(entries, modelName)
	}
	return out, nil
}

func (fs *FileStore) ClearHistory(ctx context.Context, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if name == "" {
		fs.doc.History = make(History)
	} else {
		delete(fs.doc.History, name)
	}
	return fs.persist()
}

// Backup writes the current document to a sibling path with a .backup
// suffix appended to the original extension.
func (fs *FileStore) Backup(ctx context.Context) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.persist(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(fs.path)
	if err != nil {
		return "", fmt.Errorf("store: backup read %q: %w", fs.path, err)
	}
	backupPath := fs.path + ".backup"
	if err := os.WriteFile(backupPath, b, 0o644); err != nil {
		return "", fmt.Errorf("store: backup write %q: %w", backupPath, err)
	}
	return backupPath, nil
}

func (fs *FileStore) Info(ctx context.Context) (SourceInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	hasHistory := false
	for _, entries := range fs.doc.History {
		if len(entries) > 0 {
			hasHistory = true
			break
		}
	}
	return SourceInfo{
		Mode:        "file",
		Path:        fs.path,
		Format:      fs.format,
		PromptCount: len(fs.doc.Prompts),
		HasHistory:  hasHistory,
	}, nil
}

func (fs *FileStore) Close() error {
	return nil
}
