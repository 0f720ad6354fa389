// Package settingsfile resolves an optional YAML settings file that pins
// default search directories and emitter flags so operators don't have to
// repeat them on every invocation. Resolution cascades: env var, then an
// explicit flag path, then the XDG config directory.
package settingsfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const appName = "inipp"

// envConfigFile, when set, names the settings file directly and bypasses
// the XDG lookup entirely.
var envConfigFile = "INIPP_CONFIG_FILE"

// Settings mirrors the parser Options a user would otherwise pass as CLI
// flags, plus a default search path list for includes.
type Settings struct {
	// SearchDirs are prepended to any -i/--include directories given on
	// the command line.
	SearchDirs []string `yaml:"search_dirs"`
	// AllowOverride mirrors the parser's allow_override Option.
	AllowOverride bool `yaml:"allow_override"`
	// IgnoreInactive mirrors the parser's ignore_inactive Option.
	IgnoreInactive bool `yaml:"ignore_inactive"`
	// EraseReferenced mirrors the parser's erase_referenced flag.
	EraseReferenced bool `yaml:"erase_referenced"`
	// ExcessiveQuotes widens the INI emitter's unquoted character set.
	ExcessiveQuotes bool `yaml:"excessive_quotes"`
	// Format "ini" turns on INI output and "ini-pretty" turns on
	// pretty-printed JSON, in addition to the command-line flags; any
	// other value changes nothing.
	Format string `yaml:"format"`
}

// ResolvePath returns the settings file path to load, honoring
// $INIPP_CONFIG_FILE, then flagPath if non-empty, then
// $XDG_CONFIG_HOME/inipp/settings.yml, then ~/.config/inipp/settings.yml.
// It does not check whether the file exists.
func ResolvePath(flagPath string) (string, error) {
	if v := os.Getenv(envConfigFile); v != "" {
		return v, nil
	}
	if flagPath != "" {
		return flagPath, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName, "settings.yml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("settingsfile: could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, "settings.yml"), nil
}

// Load reads and parses the settings file at path. A missing file is not
// an error: it returns the zero Settings, matching the cascade's
// "settings file is optional" contract.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settingsfile: reading %s: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settingsfile: parsing %s: %w", path, err)
	}
	return s, nil
}

// Merge layers flag-supplied search directories after the settings file's,
// matching resolveRegistryDirs' "configDir first, then explicit" order.
func (s Settings) Merge(flagDirs []string) []string {
	dirs := make([]string, 0, len(s.SearchDirs)+len(flagDirs))
	dirs = append(dirs, s.SearchDirs...)
	dirs = append(dirs, flagDirs...)
	return dirs
}
