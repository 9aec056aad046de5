package prompt

import (
	"errors"
	"reflect"
	"testing"
)

func newTestPrompt(t *testing.T) *Prompt {
	t.Helper()

	gpt, err := NewModel("Hello {name}", []string{"name"})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	p, err := New("greet", map[string]*Model{"gpt-4": gpt}, "gpt-4")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewModel_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		params  []string
	}{
		{"empty content", "", []string{"a"}},
		{"blank content", "   ", nil},
		{"blank parameter", "{a}", []string{"a", " "}},
		{"duplicate parameter", "{a}", []string{"a", "a"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewModel(tt.content, tt.params)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("NewModel: got %v want ValidationError", err)
			}
		})
	}

	t.Run("template contract enforced at construction", func(t *testing.T) {
		t.Parallel()
		_, err := NewModel("Hello {name}", []string{"name", "unused"})
		var extra *ExtraParameterError
		if !errors.As(err, &extra) {
			t.Fatalf("NewModel: got %v want ExtraParameterError", err)
		}
	})
}

func TestNew_ValidationOrder(t *testing.T) {
	t.Parallel()

	valid, err := NewModel("Hi {x}", []string{"x"})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	t.Run("blank name first", func(t *testing.T) {
		t.Parallel()
		_, err := New("  ", nil, "missing")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New: got %v want ValidationError", err)
		}
	})

	t.Run("hostile name characters", func(t *testing.T) {
		t.Parallel()
		_, err := New("a/b", map[string]*Model{"m": valid}, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New: got %v want ValidationError", err)
		}
	})

	t.Run("no models", func(t *testing.T) {
		t.Parallel()
		_, err := New("p", nil, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New: got %v want ValidationError", err)
		}
	})

	t.Run("unknown default model", func(t *testing.T) {
		t.Parallel()
		_, err := New("p", map[string]*Model{"m": valid}, "other")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New: got %v want ValidationError", err)
		}
	})

	t.Run("no default is allowed", func(t *testing.T) {
		t.Parallel()
		p, err := New("p", map[string]*Model{"m": valid}, "")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := p.Build(map[string]any{"x": 1}, ""); !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("Build without default: got %v want ErrInvalidOperation", err)
		}
	})
}

func TestPrompt_ModelOperations(t *testing.T) {
	t.Parallel()

	p := newTestPrompt(t)

	claude, err := NewModel("Hi {name}!", []string{"name"})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := p.AddModel("claude", claude); err != nil {
		t.Fatalf("AddModel: %v", err)
	}
	if err := p.AddModel("claude", claude); !errors.Is(err, ErrExists) {
		t.Fatalf("AddModel(duplicate): got %v want ErrExists", err)
	}

	got, err := p.Build(map[string]any{"name": "Bo"}, "claude")
	if err != nil {
		t.Fatalf("Build(claude): %v", err)
	}
	if got != "Hi Bo!" {
		t.Fatalf("Build(claude): got %q", got)
	}

	// The default is untouched by adding a variant.
	got, err = p.Build(map[string]any{"name": "Bo"}, "")
	if err != nil {
		t.Fatalf("Build(default): %v", err)
	}
	if got != "Hello Bo" {
		t.Fatalf("Build(default): got %q", got)
	}

	replacement, err := NewModel("Howdy {name}", []string{"name"})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := p.UpdateModel("claude", replacement); err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}
	if p.Models["claude"].Content != "Howdy {name}" {
		t.Fatalf("UpdateModel did not replace content: %q", p.Models["claude"].Content)
	}
	if err := p.UpdateModel("missing", replacement); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("UpdateModel(missing): got %v want ErrModelNotFound", err)
	}

	if err := p.RemoveModel("missing"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("RemoveModel(missing): got %v want ErrModelNotFound", err)
	}
	if err := p.RemoveModel("gpt-4"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("RemoveModel(default): got %v want ErrInvalidOperation", err)
	}
	if err := p.SetDefaultModel("claude"); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}
	if err := p.RemoveModel("gpt-4"); err != nil {
		t.Fatalf("RemoveModel after default change: %v", err)
	}
	if want := []string{"claude"}; !reflect.DeepEqual(p.ModelNames(), want) {
		t.Fatalf("ModelNames: got %v want %v", p.ModelNames(), want)
	}

	if err := p.SetDefaultModel("missing"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("SetDefaultModel(missing): got %v want ErrModelNotFound", err)
	}
}

func TestPrompt_Rename(t *testing.T) {
	t.Parallel()

	p := newTestPrompt(t)
	if err := p.Rename("welcome"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.Name != "welcome" {
		t.Fatalf("Name: got %q", p.Name)
	}
	var verr *ValidationError
	if err := p.Rename(" "); !errors.As(err, &verr) {
		t.Fatalf("Rename(blank): got %v want ValidationError", err)
	}
}

func TestPrompt_CloneIsDeep(t *testing.T) {
	t.Parallel()

	p := newTestPrompt(t)
	c := p.Clone()
	c.Models["gpt-4"].Content = "changed {name}"
	if p.Models["gpt-4"].Content != "Hello {name}" {
		t.Fatalf("Clone shares model state: %q", p.Models["gpt-4"].Content)
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	p := newTestPrompt(t)
	claude, err := NewModel("Hi {name}!", []string{"name"})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := p.AddModel("claude", claude); err != nil {
		t.Fatalf("AddModel: %v", err)
	}

	got, err := FromRecord(p.Record())
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if got.Name != p.Name {
		t.Fatalf("Name: got %q want %q", got.Name, p.Name)
	}
	if got.DefaultModel != p.DefaultModel {
		t.Fatalf("DefaultModel: got %q want %q", got.DefaultModel, p.DefaultModel)
	}
	if !reflect.DeepEqual(got.ModelNames(), p.ModelNames()) {
		t.Fatalf("ModelNames: got %v want %v", got.ModelNames(), p.ModelNames())
	}
	for name, want := range p.Models {
		g := got.Models[name]
		if g.Content != want.Content {
			t.Fatalf("model %q content: got %q want %q", name, g.Content, want.Content)
		}
		if !reflect.DeepEqual(g.Parameters, want.Parameters) {
			t.Fatalf("model %q parameters: got %v want %v", name, g.Parameters, want.Parameters)
		}
		if !g.LastUpdated.Equal(want.LastUpdated) {
			t.Fatalf("model %q last updated: got %v want %v", name, g.LastUpdated, want.LastUpdated)
		}
	}
	if !got.LastUpdated.Equal(p.LastUpdated) {
		t.Fatalf("LastUpdated: got %v want %v", got.LastUpdated, p.LastUpdated)
	}
}

func TestFromRecord_RejectsInvalid(t *testing.T) {
	t.Parallel()

	rec := Record{
		Name: "broken",
		Models: map[string]ModelRecord{
			"m": {Content: "Hello {name}", Parameters: []string{"other"}},
		},
	}
	if _, err := FromRecord(rec); err == nil {
		t.Fatal("FromRecord: expected error for mismatched template")
	}
}
