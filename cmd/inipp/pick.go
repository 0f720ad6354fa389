package main

import (
	"fmt"
	"sort"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/inipp/inipp/internal/emit"
	"github.com/inipp/inipp/internal/natural"
)

// pickCmd fuzzy-picks a section from a finalized build and prints it,
// with a preview window rendering each candidate's INI text.
var pickCmd = &cobra.Command{
	Use:   "pick FILE",
	Short: "Fuzzy-pick a section from a finalized build and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(args[0])
	},
}

func runPick(path string) error {
	rc, err := buildResolvedConfig()
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	result, _, err := buildOne(rc, path)
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}

	names := make([]string, 0, len(result))
	for name := range result {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	if len(names) == 0 {
		fmt.Println("no sections")
		return nil
	}

	idx, err := fuzzyfinder.Find(names, func(i int) string { return names[i] },
		fuzzyfinder.WithPromptString("section> "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 {
				return ""
			}
			return emit.INI(emit.Result{names[i]: result[names[i]]}, emit.Options{})
		}),
	)
	if err != nil {
		if err == fuzzyfinder.ErrAbort {
			return nil
		}
		return &runExit{code: 3, msg: err.Error()}
	}

	name := names[idx]
	fmt.Print(emit.INI(emit.Result{name: result[name]}, emit.Options{ExcessiveQuotes: flagExcessiveQuotes}))
	return nil
}
