package prompts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AndRender(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(path, []byte(`{"item_added":"{qty}x {name} toegevoegd."}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := set.Render("item_added", map[string]string{"qty": "2", "name": "pizza margherita"})
	want := "2x pizza margherita toegevoegd."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_MissingKeyFallsBack(t *testing.T) {
	set := &Set{templates: map[string]string{}}
	got := set.Render("nonexistent", nil)
	if got != "[nonexistent]" {
		t.Errorf("Render() = %q, want [nonexistent]", got)
	}
}

func TestRenderOptional_MissingKeyReturnsEmpty(t *testing.T) {
	set := &Set{templates: map[string]string{}}
	if got := set.RenderOptional("recording_notice", nil); got != "" {
		t.Errorf("RenderOptional() = %q, want empty", got)
	}
}
