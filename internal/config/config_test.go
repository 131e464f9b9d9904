package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find = %q, %v, %v", got, ok, err)
	}
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}
}

func TestDiscoverWithoutFileUsesDefaults(t *testing.T) {
	m, ok, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// temp dirs normally have no songsheet.toml above them
	if ok {
		t.Skipf("found unrelated %s at %s", FileName, m.Path)
	}
	if m.Config != Default() {
		t.Fatalf("config = %+v, want defaults", m.Config)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[diagnostics]
color = "off"

[parse]
format = "json"
jobs = 4

[format]
tabs = true

[log]
level = "debug"
file = "songsheet.log"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Diagnostics: DiagnosticsConfig{Max: 100, Color: "off"},
		Parse:       ParseConfig{Format: "json", Jobs: 4},
		Format:      FormatConfig{Indent: 2, Tabs: true},
		Log:         LogConfig{Level: "debug", File: "songsheet.log"},
	}
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadManifestRoot(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadManifest(writeConfig(t, dir, "[parse]\njobs = 2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Root != dir || m.Config.Parse.Jobs != 2 {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[parse\n", "failed to parse TOML"},
		{"unknown key", "[parse]\nmode = \"x\"\n", "unknown keys: parse.mode"},
		{"bad color", "[diagnostics]\ncolor = \"blue\"\n", "[diagnostics].color"},
		{"bad format", "[parse]\nformat = \"yaml\"\n", "[parse].format"},
		{"bad indent", "[format]\nindent = 0\n", "[format].indent"},
		{"negative jobs", "[parse]\njobs = -1\n", "[parse].jobs"},
		{"negative max", "[diagnostics]\nmax = -3\n", "[diagnostics].max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
