package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/inipp/inipp/internal/emit"
	"github.com/inipp/inipp/internal/expr"
	"github.com/inipp/inipp/internal/subst"
	"github.com/inipp/inipp/internal/value"
)

// replCmd is an interactive tester for the substitutor and expression
// bridge against a file's finalized build: it loads FILE once, then
// evaluates each typed line against the chosen section's scope.
var replCmd = &cobra.Command{
	Use:   "repl FILE",
	Short: "Interactively test $-substitutions and $\"...\" expressions against a built file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(args[0])
	},
}

type replHost struct {
	result  emit.Result
	section string
}

func (h *replHost) sectionMatch(pattern string) (string, emit.Section, bool) {
	if sec, ok := h.result[pattern]; ok {
		return pattern, sec, true
	}
	for name, sec := range h.result {
		if strings.Contains(name, pattern) {
			return name, sec, true
		}
	}
	return "", nil, false
}

func (h *replHost) Read(key string, def expr.Val) (expr.Val, bool) { return def, false }

func (h *replHost) Has(section, key, val string) bool {
	_, sec, ok := h.sectionMatch(section)
	if !ok {
		return false
	}
	if key == "" {
		return true
	}
	v, ok := sec[key]
	if !ok {
		return false
	}
	return val == "" || v.String() == val
}

func (h *replHost) Get(section, key string, def expr.Val) (expr.Val, bool) {
	_, sec, ok := h.sectionMatch(section)
	if !ok {
		return def, false
	}
	v, ok := sec[key]
	if !ok {
		return def, false
	}
	return expr.String(v.String()), true
}

func (h *replHost) Set(section, key string, v expr.Val) int {
	_, sec, ok := h.sectionMatch(section)
	if !ok {
		return 0
	}
	sec[key] = value.New(expr.Pieces(v)...)
	return 1
}

func (h *replHost) lookup(name string) (value.Value, bool) {
	if h.section != "" {
		if sec, ok := h.result[h.section]; ok {
			if v, ok := sec[name]; ok {
				return v, true
			}
		}
	}
	if def, ok := h.result[""]; ok {
		if v, ok := def[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

func runRepl(path string) error {
	rc, err := buildResolvedConfig()
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	result, counts, err := buildOne(rc, path)
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	fmt.Printf("loaded %s (%d sections, %d warnings, %d errors)\n", path, len(result), counts.Warnings, counts.Errors)

	host := &replHost{result: result}
	interp := expr.NewInterpreter(host)

	rl, err := readline.New("inipp> ")
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	defer rl.Close()

	fmt.Println(`type "$Name" / "${Name:...}" to test a substitution, a bare script body to evaluate, ":section NAME" to switch scope, ":quit" to exit.`)
	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return &runExit{code: 3, msg: err.Error()}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case line == ":quit" || line == ":q":
			return nil
		case strings.HasPrefix(line, ":section"):
			host.section = strings.TrimSpace(strings.TrimPrefix(line, ":section"))
			fmt.Println("section:", host.section)
		case strings.HasPrefix(line, "$"):
			pieces, drop := subst.Substitute(line, host.lookup, true, nil)
			if drop {
				fmt.Println("(dropped: required reference missing)")
				continue
			}
			fmt.Println(strconv.Quote(value.New(pieces...).String()))
		default:
			v, err := interp.Eval(line)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(v.AsString())
		}
	}
}
