package settingsfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath_EnvVarTakesPriority(t *testing.T) {
	t.Setenv(envConfigFile, "/explicit/settings.yml")
	got, err := ResolvePath("/flag/settings.yml")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != "/explicit/settings.yml" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvePath_FlagPathUsedWhenEnvAbsent(t *testing.T) {
	t.Setenv(envConfigFile, "")
	got, err := ResolvePath("/flag/settings.yml")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != "/flag/settings.yml" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvePath_FallsBackToXDG(t *testing.T) {
	t.Setenv(envConfigFile, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err := ResolvePath("")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want := filepath.Join("/xdg", "inipp", "settings.yml")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLoad_MissingFileReturnsZeroValue(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.SearchDirs) != 0 || s.AllowOverride || s.IgnoreInactive || s.EraseReferenced || s.ExcessiveQuotes || s.Format != "" {
		t.Fatalf("expected zero Settings, got %+v", s)
	}
}

func TestLoad_ParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")
	content := `
search_dirs:
  - /etc/inipp/base
  - /etc/inipp/overlays
allow_override: true
ignore_inactive: true
erase_referenced: false
excessive_quotes: true
format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.SearchDirs) != 2 || s.SearchDirs[0] != "/etc/inipp/base" {
		t.Fatalf("unexpected SearchDirs: %v", s.SearchDirs)
	}
	if !s.AllowOverride || !s.IgnoreInactive || s.EraseReferenced || !s.ExcessiveQuotes {
		t.Fatalf("unexpected bool fields: %+v", s)
	}
	if s.Format != "json" {
		t.Fatalf("got format %q", s.Format)
	}
}

func TestMerge_SettingsDirsFirstThenFlags(t *testing.T) {
	s := Settings{SearchDirs: []string{"a", "b"}}
	got := s.Merge([]string{"c", "d"})
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
