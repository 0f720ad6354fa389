package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/inipp/inipp/internal/emit"
	"github.com/inipp/inipp/internal/natural"
)

// browseCmd is an interactive browser over a finalized build: a
// bubbletea+bubbles/list selection screen over section names, printing the
// chosen section on enter.
var browseCmd = &cobra.Command{
	Use:   "browse FILE",
	Short: "Browse a finalized build's sections interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(args[0])
	},
}

type sectionItem struct {
	name string
	sec  emit.Section
}

func (i sectionItem) FilterValue() string { return i.name }
func (i sectionItem) Title() string       { return i.name }
func (i sectionItem) Description() string { return fmt.Sprintf("%d keys", len(i.sec)) }

type sectionDelegate struct{}

func (d sectionDelegate) Height() int                         { return 2 }
func (d sectionDelegate) Spacing() int                        { return 1 }
func (d sectionDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

var (
	browseTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	browseDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	browseSelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
)

func (d sectionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(sectionItem)
	if !ok {
		return
	}
	title := browseTitleStyle.Render(si.Title())
	if index == m.Index() {
		title = browseSelStyle.Render("> " + si.Title())
	}
	fmt.Fprintf(w, "%s\n  %s", title, browseDescStyle.Render(si.Description()))
}

type browseModel struct {
	list     list.Model
	chosen   string
	quitting bool
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(sectionItem); ok {
				m.chosen = it.name
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

func runBrowse(path string) error {
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

	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, sectionItem{name: name, sec: result[name]})
	}

	l := list.New(items, sectionDelegate{}, 60, 20)
	l.Title = fmt.Sprintf("%s — %d sections", path, len(names))

	m := browseModel{list: l}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return &runExit{code: 3, msg: err.Error()}
	}

	bm, ok := final.(browseModel)
	if !ok || bm.chosen == "" {
		return nil
	}
	fmt.Print(emit.INI(emit.Result{bm.chosen: result[bm.chosen]}, emit.Options{ExcessiveQuotes: flagExcessiveQuotes}))
	return nil
}
