package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inipp/inipp/internal/settingsfile"
)

// initCmd scaffolds a starter input file and an optional settings.yml
// through an interactive form that asks for the starter file path, one
// include search directory, whether to write settings.yml, and the
// allow_override setting.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a starter input file and settings.yml",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

const starterTemplate = `[Section]
Name = world
Greeting = Hello, $Name!
`

func runInit() error {
	var (
		target        = "main.ini"
		includeDir    = "."
		writeSettings = true
		allowOverride bool
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Starter file path").
				Value(&target),
			huh.NewInput().
				Title("Include search directory").
				Value(&includeDir),
			huh.NewConfirm().
				Title("Write a settings.yml alongside it?").
				Value(&writeSettings),
			huh.NewConfirm().
				Title("Allow a later duplicate section to override an earlier one?").
				Value(&allowOverride),
		),
	)
	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return nil
		}
		return &runExit{code: 3, msg: err.Error()}
	}

	if _, err := os.Stat(target); err == nil {
		return &runExit{code: 3, msg: fmt.Sprintf("%s already exists", target)}
	}
	if err := os.WriteFile(target, []byte(starterTemplate), 0o644); err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	fmt.Println("wrote", target)

	if !writeSettings {
		return nil
	}
	s := settingsfile.Settings{
		SearchDirs:    []string{includeDir},
		AllowOverride: allowOverride,
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	settingsPath := filepath.Join(filepath.Dir(target), "settings.yml")
	if err := os.WriteFile(settingsPath, data, 0o644); err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}
	fmt.Println("wrote", settingsPath)
	return nil
}
