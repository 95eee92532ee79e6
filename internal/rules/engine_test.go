package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEngineAppliesLiteralRules(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, "gonna => going to\nKanada => Kannada\n")

	got, err := engine.Apply("I'm GONNA speak kanada")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got != "I'm going to speak Kannada" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestEngineIgnoresCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, "# comment\n\na => b\n")
	got, err := engine.Apply("a")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got != "b" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestEnginePassThroughWithoutRulesFile(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", 0)
	if err != nil {
		t.Fatalf("new engine failed: %v", err)
	}
	got, err := engine.Apply("unchanged text")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got != "unchanged text" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestEngineMissingFileIsPassThrough(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(filepath.Join(t.TempDir(), "nope.rules"), 0)
	if err != nil {
		t.Fatalf("new engine failed: %v", err)
	}
	got, _ := engine.Apply("x")
	if got != "x" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestEngineRejectsInvalidRuleLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.rules")
	if err := os.WriteFile(path, []byte("not a valid rule\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := NewEngine(path, 0); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEngineLoopLimitBoundsChainedRules(t *testing.T) {
	t.Parallel()

	// The rules rewrite each other forever; the loop limit terminates it.
	engine := newTestEngine(t, "cat => dog\ndog => cat\n")
	got, err := engine.Apply("cat")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got != "cat" && got != "dog" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func newTestEngine(t *testing.T, contents string) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rules")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	engine, err := NewEngine(path, 0)
	if err != nil {
		t.Fatalf("new engine failed: %v", err)
	}
	return engine
}
