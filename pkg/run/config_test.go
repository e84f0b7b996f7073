package run

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"), false)
	if err != nil || !cmp.Equal(cfg, DefaultConfig()) {
		t.Errorf("got (%v, %v), want defaults", cfg, err)
	}

	path := writeFile(t, dir, "config.yaml",
		"color: never\nmax-call-depth: 100\nhistory-file: ~/.dde_history\nseed: 7\n")
	cfg, err = LoadConfig(path, true)
	want := &Config{Color: ColorNever, MaxCallDepth: 100,
		HistoryFile: filepath.Join(dir, ".dde_history"), Seed: 7}
	if err != nil || !cmp.Equal(cfg, want) {
		t.Errorf("got (%v, %v), want %v", cfg, err, want)
	}

	empty := writeFile(t, dir, "empty.yaml", "")
	cfg, err = LoadConfig(empty, true)
	if err != nil || !cmp.Equal(cfg, DefaultConfig()) {
		t.Errorf("got (%v, %v), want defaults", cfg, err)
	}
}

var badConfigTests = []struct {
	content string
	wantErr string
}{
	{"max-call-depth: 0\n", "max-call-depth must be positive, but is 0"},
	{"color: blue\n", `color must be auto, always or never, but is "blue"`},
	{"history: x\n", "field history not found"},
	{"seed: [1]\n", "cannot unmarshal"},
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	for i, test := range badConfigTests {
		path := filepath.Join(dir, "config"+string(rune('a'+i))+".yaml")
		if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(path, false)
		if err == nil || !strings.Contains(err.Error(), test.wantErr) {
			t.Errorf("%q: got error %v, want containing %q", test.content, err, test.wantErr)
		}
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/dde")
	for _, test := range []struct{ in, want string }{
		{"~", "/home/dde"},
		{"~/hist", "/home/dde/hist"},
		{"/tmp/~/hist", "/tmp/~/hist"},
		{"~other/hist", "~other/hist"},
		{"", ""},
	} {
		if got := expandHome(test.in); got != test.want {
			t.Errorf("expandHome(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
