package main

import (
	"fmt"
	"os"

	"github.com/inipp/inipp/internal/diag"
	"github.com/inipp/inipp/internal/emit"
	"github.com/inipp/inipp/internal/engine"
	"github.com/inipp/inipp/internal/settingsfile"
)

// resolvedConfig bundles the settings-cascade and flag-derived values a
// subcommand needs to drive a Build and render its result, so run/browse/
// pick/repl all assemble it the same way.
type resolvedConfig struct {
	searchDirs      []string
	allowOverride   bool
	ignoreInactive  bool
	eraseReferenced bool
	noInclude       bool
	noMaths         bool
	outputINI       bool
	prettyJSON      bool
	excessiveQuotes bool
}

// loadSettings resolves and loads the optional settings.yml cascade.
// buildResolvedConfig combines it with the flags: a boolean option is on
// when either the flag or the settings file turns it on, settings search
// directories come before flag ones, and a settings format of "ini"
// selects INI output whatever the flags say.
func loadSettings() (settingsfile.Settings, error) {
	path, err := settingsfile.ResolvePath(flagSettingsPath)
	if err != nil {
		return settingsfile.Settings{}, err
	}
	return settingsfile.Load(path)
}

func buildResolvedConfig() (resolvedConfig, error) {
	s, err := loadSettings()
	if err != nil {
		return resolvedConfig{}, err
	}
	rc := resolvedConfig{
		searchDirs:      s.Merge(flagIncludeDirs),
		allowOverride:   flagAllowOverride || s.AllowOverride,
		ignoreInactive:  flagIgnoreInactive || s.IgnoreInactive,
		eraseReferenced: flagEraseReferenced || s.EraseReferenced,
		noInclude:       flagNoInclude,
		noMaths:         flagNoMaths,
		outputINI:       flagOutputINI,
		prettyJSON:      flagPrettyJSON || s.Format == "ini-pretty",
		excessiveQuotes: flagExcessiveQuotes || s.ExcessiveQuotes,
	}
	if s.Format == "ini" {
		rc.outputINI = true
	}
	return rc, nil
}

// newDiagHandler builds the CLI's injected error handler: -q/--quiet
// discards everything,
// otherwise warnings print only under -v/--verbose and errors always print,
// both lipgloss-styled to stderr.
func newDiagHandler() diag.Handler {
	if flagQuiet {
		return diag.Discard{}
	}
	return &diag.WriterHandler{Out: os.Stderr, Verbose: flagVerbose}
}

// buildOne runs a single input file through the Parser with rc's settings
// and returns the finalized result alongside accumulated diagnostic counts.
func buildOne(rc resolvedConfig, path string) (emit.Result, diag.Counts, error) {
	return buildOneWithReader(rc, path, fsReader)
}

// buildOneWithReader is buildOne with an injectable Reader, used by the
// stdin path where
// the root "file" isn't on disk.
func buildOneWithReader(rc resolvedConfig, path string, reader engine.Reader) (emit.Result, diag.Counts, error) {
	pr := engine.NewParser(engine.Config{
		Options: engine.Options{
			AllowOverride:   rc.allowOverride,
			IgnoreInactive:  rc.ignoreInactive,
			EraseReferenced: rc.eraseReferenced,
			NoInclude:       rc.noInclude,
			NoMaths:         rc.noMaths,
			SearchDirs:      rc.searchDirs,
		},
		Reader: reader,
		Diag:   newDiagHandler(),
	})
	return pr.Build(path)
}

// renderResult serializes result as INI or JSON per rc's output flags.
func renderResult(result emit.Result, rc resolvedConfig) (string, error) {
	opts := emit.Options{ExcessiveQuotes: rc.excessiveQuotes}
	if rc.outputINI {
		return emit.INI(result, opts), nil
	}
	opts.Indent = rc.prettyJSON
	out, err := emit.JSON(result, opts)
	if err != nil {
		return "", fmt.Errorf("rendering JSON: %w", err)
	}
	return out, nil
}
