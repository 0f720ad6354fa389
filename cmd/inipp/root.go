package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inipp/inipp/pkg/lib"
)

// appName is the single source of truth for the application name.
const appName = "inipp"

var (
	flagPostfix        string
	flagDestination     string
	flagIncludeDirs     []string
	flagOutputINI       bool
	flagPrettyJSON      bool
	flagVerbose         bool
	flagQuiet           bool
	flagNoInclude       bool
	flagNoMaths         bool
	flagExcessiveQuotes bool
	flagAllowOverride   bool
	flagIgnoreInactive  bool
	flagEraseReferenced bool
	flagSettingsPath    string
	flagCopy            bool
)

var rootCmd = &cobra.Command{
	Use:     appName + " [FILE ...]",
	Short:   "Preprocess INI-like configuration files",
	Long:    appName + " expands templates, mixins, generators and $-substitutions in one or more input files and emits INI or JSON.",
	Version: "0.1.0",
	Args:    cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPostfix, "postfix", "p", "", "append TEXT to each input filename to form each output filename (batch mode)")
	rootCmd.PersistentFlags().StringVarP(&flagDestination, "destination", "d", "", "write combined output to FILE")
	rootCmd.PersistentFlags().StringSliceVarP(&flagIncludeDirs, "include", "i", nil, "add DIR to the search path (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagOutputINI, "output-ini", "o", false, "emit INI instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagPrettyJSON, "format", "f", false, "pretty-print JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "emit warnings to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress errors and warnings")
	rootCmd.PersistentFlags().BoolVar(&flagNoInclude, "no-include", false, "disable the [INCLUDE] mechanism")
	rootCmd.PersistentFlags().BoolVar(&flagNoMaths, "no-maths", false, "disable the expression bridge")
	rootCmd.PersistentFlags().BoolVar(&flagExcessiveQuotes, "excessive-quotes", false, "widen the unquoted character set in INI output")
	rootCmd.PersistentFlags().BoolVar(&flagAllowOverride, "allow-override", false, "let a later duplicate section overwrite an earlier one's keys")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreInactive, "ignore-inactive", false, "drop inactive sections instead of emitting ACTIVE=0")
	rootCmd.PersistentFlags().BoolVar(&flagEraseReferenced, "erase-referenced", false, "remove variables referenced while resolving templates")
	rootCmd.PersistentFlags().StringVar(&flagSettingsPath, "settings", "", "path to a settings.yml overriding the config cascade")
	rootCmd.PersistentFlags().BoolVar(&flagCopy, "copy", false, "copy emitted output to the system clipboard")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(initCmd)
}

// Execute runs the root command, mapping any returned error or
// accumulated diagnostic counts onto the documented exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if ec, ok := err.(exitCoded); ok {
			if ec.ExitCode() == 1 {
				// Warnings-only: the handler already reported them (if
				// -v was given); don't also print a spurious "Error:".
				lib.ExitCode(1, nil)
			}
			lib.ExitCode(ec.ExitCode(), err)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
}

// exitCoded lets a returned error carry a specific documented exit code
// instead of always mapping to the generic "unexpected failure" code.
type exitCoded interface {
	error
	ExitCode() int
}
