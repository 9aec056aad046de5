package suite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stellarlinkco/prompt-suite/internal/prompt"
	"github.com/stellarlinkco/prompt-suite/internal/store"
)

func newTestSuite(t *testing.T) *Suite {
	t.Helper()

	s, err := OpenFile(filepath.Join(t.TempDir(), "prompts.yaml"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSuite_CreateAndBuild(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	_, err := s.CreatePrompt(ctx, "greeting", "gpt-4", "Hello {name}, welcome to {place}", []string{"name", "place"}, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	got, err := s.BuildPrompt(ctx, "greeting", map[string]any{"name": "Ava", "place": "Oslo"}, "")
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if got != "Hello Ava, welcome to Oslo" {
		t.Fatalf("BuildPrompt: got %q", got)
	}

	// Undeclared parameters keep the creation out of the store entirely.
	_, err = s.CreatePrompt(ctx, "broken", "gpt-4", "Hello {name}", []string{"name", "unused"}, "")
	var perr *prompt.ExtraParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("CreatePrompt(invalid): got %v want ExtraParameterError", err)
	}
	if _, err := s.GetPrompt(ctx, "broken"); !errors.Is(err, prompt.ErrNotFound) {
		t.Fatalf("GetPrompt(broken): got %v want ErrNotFound", err)
	}
}

func TestSuite_BuildReportsMissingBeforeExtra(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	_, err := s.CreatePrompt(ctx, "greeting", "gpt-4", "Hello {name} from {place}", []string{"name", "place"}, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	_, err = s.BuildPrompt(ctx, "greeting", map[string]any{"place": "Oslo", "extra": 1}, "")
	var merr *prompt.MissingParameterError
	if !errors.As(err, &merr) {
		t.Fatalf("BuildPrompt: got %v want MissingParameterError", err)
	}
	if !reflect.DeepEqual(merr.Names, []string{"name"}) {
		t.Fatalf("missing names: %v", merr.Names)
	}
}

func TestSuite_ModelVariants(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	if _, err := s.CreatePrompt(ctx, "summary", "gpt-4", "Summarize: {text}", []string{"text"}, ""); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, err := s.AddModel(ctx, "summary", "claude", "Please summarize the following.\n\n{text}", []string{"text"}); err != nil {
		t.Fatalf("AddModel: %v", err)
	}
	if _, err := s.AddModel(ctx, "summary", "claude", "dup", nil); !errors.Is(err, prompt.ErrExists) {
		t.Fatalf("AddModel(duplicate): got %v want ErrExists", err)
	}

	got, err := s.BuildPrompt(ctx, "summary", map[string]any{"text": "hi"}, "claude")
	if err != nil {
		t.Fatalf("BuildPrompt(claude): %v", err)
	}
	if got != "Please summarize the following.\n\nhi" {
		t.Fatalf("BuildPrompt(claude): got %q", got)
	}

	// The default variant still answers the unqualified build.
	got, err = s.BuildPrompt(ctx, "summary", map[string]any{"text": "hi"}, "")
	if err != nil {
		t.Fatalf("BuildPrompt(default): %v", err)
	}
	if got != "Summarize: hi" {
		t.Fatalf("BuildPrompt(default): got %q", got)
	}

	if _, err := s.SetDefaultModel(ctx, "summary", "claude"); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}
	p, err := s.GetPrompt(ctx, "summary")
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if p.DefaultModel != "claude" {
		t.Fatalf("DefaultModel: got %q", p.DefaultModel)
	}

	// The default variant refuses removal until the default moves.
	if _, err := s.RemoveModel(ctx, "summary", "claude"); !errors.Is(err, prompt.ErrInvalidOperation) {
		t.Fatalf("RemoveModel(default): got %v want ErrInvalidOperation", err)
	}
	if _, err := s.SetDefaultModel(ctx, "summary", "gpt-4"); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}
	if _, err := s.RemoveModel(ctx, "summary", "claude"); err != nil {
		t.Fatalf("RemoveModel: %v", err)
	}
	if _, err := s.RemoveModel(ctx, "summary", "claude"); !errors.Is(err, prompt.ErrModelNotFound) {
		t.Fatalf("RemoveModel(gone): got %v want ErrModelNotFound", err)
	}
}

func TestSuite_UpdateModelAndHistory(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	if _, err := s.CreatePrompt(ctx, "greeting", "gpt-4", "Hello {name}", []string{"name"}, ""); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, err := s.UpdateModel(ctx, "greeting", "gpt-4", "Hi there, {name}!", []string{"name"}); err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}

	got, err := s.BuildPrompt(ctx, "greeting", map[string]any{"name": "Ava"}, "")
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if got != "Hi there, Ava!" {
		t.Fatalf("BuildPrompt: got %q", got)
	}

	hist, err := s.GetHistory(ctx, "greeting", "")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	entries := hist["greeting"]
	if len(entries) != 2 {
		t.Fatalf("history length: got %d want 2", len(entries))
	}
	wantActions := []store.Action{store.ActionCreate, store.ActionUpdateModel}
	for i, want := range wantActions {
		if entries[i].Action != want {
			t.Fatalf("action[%d]: got %q want %q", i, entries[i].Action, want)
		}
	}
	if entries[1].Prompt.Models["gpt-4"].Content != "Hello {name}" {
		t.Fatalf("update snapshot: %q", entries[1].Prompt.Models["gpt-4"].Content)
	}

	// Reading history twice yields identical results.
	again, err := s.GetHistory(ctx, "greeting", "")
	if err != nil {
		t.Fatalf("GetHistory(again): %v", err)
	}
	if !reflect.DeepEqual(hist, again) {
		t.Fatal("GetHistory is not read-only")
	}
}

func TestSuite_DeleteRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	if _, err := s.CreatePrompt(ctx, "greeting", "gpt-4", "Hello {name}", []string{"name"}, ""); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, err := s.UpdateModel(ctx, "greeting", "gpt-4", "Hi, {name}", []string{"name"}); err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}
	if err := s.DeletePrompt(ctx, "greeting"); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if _, err := s.GetPrompt(ctx, "greeting"); !errors.Is(err, prompt.ErrNotFound) {
		t.Fatalf("GetPrompt after delete: got %v want ErrNotFound", err)
	}

	// Latest snapshot is the state at delete time.
	restored, err := s.RestorePrompt(ctx, "greeting", "")
	if err != nil {
		t.Fatalf("RestorePrompt: %v", err)
	}
	if restored.Models["gpt-4"].Content != "Hi, {name}" {
		t.Fatalf("restored content: %q", restored.Models["gpt-4"].Content)
	}

	// A specific timestamp reaches further back.
	hist, err := s.GetHistory(ctx, "greeting", "")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	updateEntry := hist["greeting"][1]
	if updateEntry.Action != store.ActionUpdateModel {
		t.Fatalf("second entry: %+v", updateEntry)
	}
	restored, err = s.RestorePrompt(ctx, "greeting", updateEntry.Timestamp)
	if err != nil {
		t.Fatalf("RestorePrompt(timestamp): %v", err)
	}
	if restored.Models["gpt-4"].Content != "Hello {name}" {
		t.Fatalf("restored content at timestamp: %q", restored.Models["gpt-4"].Content)
	}

	if _, err := s.RestorePrompt(ctx, "greeting", "2001-01-01T00:00:00Z"); !errors.Is(err, store.ErrHistoryNotFound) {
		t.Fatalf("RestorePrompt(bad timestamp): got %v want ErrHistoryNotFound", err)
	}
}

func TestSuite_RenamePersistsAcrossBackends(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) *Suite{
		"file": newTestSuite,
		"sqlite": func(t *testing.T) *Suite {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "prompts.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() {
				_ = s.Close()
			})
			return s
		},
	}

	for name, open := range backends {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := open(t)
			ctx := context.Background()

			if _, err := s.CreatePrompt(ctx, "old", "gpt-4", "Hello {name}", []string{"name"}, ""); err != nil {
				t.Fatalf("CreatePrompt: %v", err)
			}
			p, err := s.UpdatePrompt(ctx, "old", "new", "")
			if err != nil {
				t.Fatalf("UpdatePrompt: %v", err)
			}
			if p.Name != "new" {
				t.Fatalf("renamed prompt: %q", p.Name)
			}
			if _, err := s.GetPrompt(ctx, "old"); !errors.Is(err, prompt.ErrNotFound) {
				t.Fatalf("GetPrompt(old): got %v want ErrNotFound", err)
			}
			names, err := s.ListPrompts(ctx)
			if err != nil {
				t.Fatalf("ListPrompts: %v", err)
			}
			if len(names) != 1 || names[0] != "new" {
				t.Fatalf("ListPrompts: %v", names)
			}
		})
	}
}

func TestSuite_GetPromptInfo(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	if _, err := s.CreatePrompt(ctx, "summary", "gpt-4", "Summarize: {text}", []string{"text"}, ""); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, err := s.AddModel(ctx, "summary", "claude", "Condense {text} into {n} words", []string{"text", "n"}); err != nil {
		t.Fatalf("AddModel: %v", err)
	}

	info, err := s.GetPromptInfo(ctx, "summary")
	if err != nil {
		t.Fatalf("GetPromptInfo: %v", err)
	}
	if info.Name != "summary" || info.DefaultModel != "gpt-4" {
		t.Fatalf("info: %+v", info)
	}
	if !reflect.DeepEqual(info.Models, []string{"claude", "gpt-4"}) {
		t.Fatalf("models: %v", info.Models)
	}
	if !reflect.DeepEqual(info.ModelDetails["claude"].Parameters, []string{"text", "n"}) {
		t.Fatalf("claude parameters: %v", info.ModelDetails["claude"].Parameters)
	}
}

func TestSuite_ConnectAdapter(t *testing.T) {
	t.Parallel()

	prompts := make(map[string]prompt.Record)
	s, err := Connect(store.Callbacks{
		Name: "memory",
		Create: func(ctx context.Context, name, modelName, content string, parameters []string, defaultModel string) (any, error) {
			m, err := prompt.NewModel(content, parameters)
			if err != nil {
				return nil, err
			}
			p, err := prompt.New(name, map[string]*prompt.Model{modelName: m}, defaultModel)
			if err != nil {
				return nil, err
			}
			prompts[name] = p.Record()
			return p, nil
		},
		Get: func(ctx context.Context, name string) (any, error) {
			rec, ok := prompts[name]
			if !ok {
				return nil, nil
			}
			return rec, nil
		},
		Update: func(ctx context.Context, name, newName, defaultModel string) (any, error) {
			return nil, nil
		},
		Delete: func(ctx context.Context, name string) error {
			delete(prompts, name)
			return nil
		},
		List: func(ctx context.Context) ([]string, error) {
			names := make([]string, 0, len(prompts))
			for name := range prompts {
				names = append(names, name)
			}
			return names, nil
		},
		Save: func(ctx context.Context, rec prompt.Record, action store.Action, modelName string) error {
			prompts[rec.Name] = rec
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.CreatePrompt(ctx, "greeting", "gpt-4", "Hello {name}", []string{"name"}, ""); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	got, err := s.BuildPrompt(ctx, "greeting", map[string]any{"name": "Ava"}, "")
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if got != "Hello Ava" {
		t.Fatalf("BuildPrompt: got %q", got)
	}

	if _, err := s.Backup(ctx); !errors.Is(err, store.ErrBackupUnavailable) {
		t.Fatalf("Backup: got %v want ErrBackupUnavailable", err)
	}
}

func TestSuite_SourceInfo(t *testing.T) {
	t.Parallel()

	s := newTestSuite(t)
	ctx := context.Background()

	info, err := s.SourceInfo(ctx)
	if err != nil {
		t.Fatalf("SourceInfo: %v", err)
	}
	if info.Mode != "file" || info.Format != "yaml" {
		t.Fatalf("SourceInfo: %+v", info)
	}
}
