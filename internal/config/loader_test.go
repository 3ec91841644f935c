package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type timeBlock struct {
	MinTickMs uint64 `yaml:"min_tick_ms"`
	MaxTickMs uint64 `yaml:"max_tick_ms"`
}

type mainBlock struct {
	Demo      string `yaml:"demo"`
	TickLimit uint64 `yaml:"tick_limit"`
	Watch     bool   `yaml:"watch"`
}

func TestParseAndApply(t *testing.T) {
	f, err := Parse([]byte(`
Time:
  max_tick_ms: 250
main:
  demo: bounce
  watch: true
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	tb := timeBlock{MinTickMs: 8, MaxTickMs: 5000}
	found, err := f.Apply("Time", &tb)
	if err != nil || !found {
		t.Fatalf("Apply(Time) = %v, %v", found, err)
	}
	if tb.MinTickMs != 8 {
		t.Errorf("MinTickMs = %d, want default 8 kept", tb.MinTickMs)
	}
	if tb.MaxTickMs != 250 {
		t.Errorf("MaxTickMs = %d, want 250", tb.MaxTickMs)
	}

	mb := mainBlock{TickLimit: 7}
	if _, err := f.Apply("main", &mb); err != nil {
		t.Fatalf("Apply(main) failed: %v", err)
	}
	if mb.Demo != "bounce" || !mb.Watch || mb.TickLimit != 7 {
		t.Errorf("unexpected main block: %+v", mb)
	}

	found, err = f.Apply("stats", &mb)
	if err != nil || found {
		t.Errorf("Apply(stats) = %v, %v; want absent", found, err)
	}

	if got := strings.Join(f.Sections(), ","); got != "main,time" {
		t.Errorf("Sections() = %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse([]byte("  \n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if len(f.Sections()) != 0 {
		t.Errorf("expected no sections, got %v", f.Sections())
	}
}

func TestApplyTypeMismatch(t *testing.T) {
	f, err := Parse([]byte("time:\n  min_tick_ms: soon\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	var tb timeBlock
	if _, err := f.Apply("time", &tb); err == nil {
		t.Error("expected decode error for non-numeric tick size")
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("time: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("main:\n  demo: sample\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPath, path)

	f, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if f.Path != path {
		t.Errorf("Path = %q, want %q", f.Path, path)
	}
	var mb mainBlock
	if _, err := f.Apply("main", &mb); err != nil || mb.Demo != "sample" {
		t.Errorf("Apply(main) = %+v, %v", mb, err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv(EnvPath, filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadNothingFound(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	f, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if f.Path != "" || len(f.Sections()) != 0 {
		t.Errorf("expected empty file, got %+v", f)
	}
}

func TestEncodeKeepsOrder(t *testing.T) {
	data, err := Encode([]Section{
		{Name: "Time", Config: timeBlock{MinTickMs: 8, MaxTickMs: 5000}},
		{Name: "Main", Config: mainBlock{Demo: "bounce"}},
	})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	out := string(data)
	if strings.Index(out, "time:") > strings.Index(out, "main:") {
		t.Errorf("sections out of order:\n%s", out)
	}
	if !strings.Contains(out, "max_tick_ms: 5000") {
		t.Errorf("missing encoded field:\n%s", out)
	}

	// Round trip through Parse.
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Encode()) failed: %v", err)
	}
	var mb mainBlock
	if _, err := f.Apply("main", &mb); err != nil || mb.Demo != "bounce" {
		t.Errorf("round trip main = %+v, %v", mb, err)
	}
}
