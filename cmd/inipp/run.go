package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/inipp/inipp/internal/diag"
	"github.com/inipp/inipp/internal/emit"
)

// runCmd exposes the same behavior as the bare root invocation
// ("inipp FILE...") as an explicit subcommand, for scripts that prefer a
// verb.
var runCmd = &cobra.Command{
	Use:   "run [FILE ...]",
	Short: "Preprocess one or more input files (same as the bare command)",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(args)
	},
}

// runFiles implements the CLI contract: positional files (or
// stdin with none given), -d combined destination, -p batch postfix mode,
// or plain per-file stdout otherwise.
func runFiles(args []string) error {
	rc, err := buildResolvedConfig()
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}

	if len(args) == 0 {
		return runStdin(rc)
	}
	if flagDestination != "" {
		return runCombined(rc, args, flagDestination)
	}
	if flagPostfix != "" {
		return runBatch(rc, args, flagPostfix)
	}
	return runPlain(rc, args)
}

func maybeCopy(text string) {
	if !flagCopy {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not copy to clipboard:", err)
	}
}

// runStdin reads the whole of stdin as a single logical file named
// "<stdin>" (whose directory is ".", so includes resolve against the
// working directory and then the configured search directories) and writes
// rendered output to stdout.
func runStdin(rc resolvedConfig) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return &runExit{code: 3, msg: fmt.Sprintf("reading stdin: %v", err)}
	}
	const stdinPath = "<stdin>"
	reader := func(path string) (string, bool) {
		if path == stdinPath {
			return string(data), true
		}
		return fsReader(path)
	}
	result, counts, rendered, err := buildAndRender(rc, stdinPath, reader)
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	_ = result
	fmt.Print(rendered)
	maybeCopy(rendered)
	return exitFromCounts(counts.Warnings, counts.Errors)
}

// runCombined parses every file independently and merges their finalized
// results into one map before emitting it once to destination (on a name
// collision a later file's section replaces the earlier one whole; their
// keys are not merged).
func runCombined(rc resolvedConfig, args []string, destination string) error {
	combined := make(emit.Result)
	var totalCounts diag.Counts
	for _, path := range args {
		result, counts, err := buildOne(rc, path)
		totalCounts.Warnings += counts.Warnings
		totalCounts.Errors += counts.Errors
		if err != nil {
			return &runExit{code: 3, msg: err.Error()}
		}
		for name, sec := range result {
			combined[name] = sec
		}
	}
	rendered, err := renderResult(combined, rc)
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	if err := os.WriteFile(destination, []byte(rendered), 0o644); err != nil {
		return &runExit{code: 3, msg: fmt.Sprintf("writing %s: %v", destination, err)}
	}
	maybeCopy(rendered)
	return exitFromCounts(totalCounts.Warnings, totalCounts.Errors)
}

// runBatch processes each file independently and writes its own output to
// "<file><postfix>"").
func runBatch(rc resolvedConfig, args []string, postfix string) error {
	var totalCounts diag.Counts
	for _, path := range args {
		result, counts, rendered, err := buildAndRender(rc, path, fsReader)
		totalCounts.Warnings += counts.Warnings
		totalCounts.Errors += counts.Errors
		if err != nil {
			return &runExit{code: 3, msg: err.Error()}
		}
		_ = result
		outPath := path + postfix
		if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
			return &runExit{code: 3, msg: fmt.Sprintf("writing %s: %v", outPath, err)}
		}
	}
	return exitFromCounts(totalCounts.Warnings, totalCounts.Errors)
}

// runPlain processes each file independently and writes its rendered
// output to stdout, one after another (no -d/-p given).
func runPlain(rc resolvedConfig, args []string) error {
	var totalCounts diag.Counts
	var lastRendered string
	for _, path := range args {
		_, counts, rendered, err := buildAndRender(rc, path, fsReader)
		totalCounts.Warnings += counts.Warnings
		totalCounts.Errors += counts.Errors
		if err != nil {
			return &runExit{code: 3, msg: err.Error()}
		}
		fmt.Print(rendered)
		lastRendered = rendered
	}
	if len(args) == 1 {
		maybeCopy(lastRendered)
	}
	return exitFromCounts(totalCounts.Warnings, totalCounts.Errors)
}

func buildAndRender(rc resolvedConfig, path string, reader func(string) (string, bool)) (emit.Result, diag.Counts, string, error) {
	result, counts, err := buildOneWithReader(rc, path, reader)
	if err != nil {
		return nil, counts, "", err
	}
	rendered, err := renderResult(result, rc)
	if err != nil {
		return nil, counts, "", err
	}
	return result, counts, rendered, nil
}
