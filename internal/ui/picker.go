// Package ui contains the bubbletea picker used by `avfaudio pick`.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shaban/avfaudio/session"
)

type stage int

const (
	stageCategory stage = iota
	stageOptions
)

// Picker lets the user choose a category and then toggle the options
// documented for it.
type Picker struct {
	stage stage

	// Category list
	categories []session.Category
	cursor     int

	// Options for the chosen category
	allowed   []session.CategoryOptions
	optCursor int

	mode    session.Mode
	options session.CategoryOptions

	done      bool
	cancelled bool

	width int
}

// NewPicker starts on the category in cfg with its options preselected.
func NewPicker(cfg session.Configuration) Picker {
	p := Picker{
		categories: session.Categories(),
		mode:       cfg.Mode,
		options:    cfg.Options,
	}
	for i, c := range p.categories {
		if c == cfg.Category {
			p.cursor = i
		}
	}
	return p
}

// Configuration returns the selection so far.
func (p Picker) Configuration() session.Configuration {
	cat := p.categories[p.cursor]
	mode := p.mode
	if session.ValidateMode(cat, mode) != nil {
		mode = session.ModeDefault
	}
	return session.Configuration{Category: cat, Mode: mode, Options: p.options}
}

// Done reports whether the user confirmed a selection.
func (p Picker) Done() bool { return p.done }

// Cancelled reports whether the user quit without confirming.
func (p Picker) Cancelled() bool { return p.cancelled }

// Init initializes the model
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)
	case tea.WindowSizeMsg:
		p.width = msg.Width
	}
	return p, nil
}

// handleKey handles keyboard input
func (p Picker) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		p.cancelled = true
		return p, tea.Quit
	case "up", "k":
		p.move(-1)
	case "down", "j":
		p.move(1)
	case " ", "x":
		if p.stage == stageOptions && len(p.allowed) > 0 {
			p.toggle(p.allowed[p.optCursor])
		}
	case "esc", "left", "h":
		p.stage = stageCategory
	case "enter", "right", "l":
		if p.stage == stageCategory {
			p.enterOptions()
			return p, nil
		}
		p.done = true
		return p, tea.Quit
	}
	return p, nil
}

func (p *Picker) move(delta int) {
	if p.stage == stageCategory {
		p.cursor = clamp(p.cursor+delta, len(p.categories))
		return
	}
	p.optCursor = clamp(p.optCursor+delta, len(p.allowed))
}

func clamp(i, n int) int {
	if i < 0 || n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (p *Picker) enterOptions() {
	cat := p.categories[p.cursor]
	var allowed []session.CategoryOptions
	for _, opt := range session.Options() {
		if session.Validate(cat, opt) == nil {
			allowed = append(allowed, opt)
		}
	}
	p.allowed = allowed
	// drop options the new category does not take
	p.options &= session.AllowedOptions(cat)
	p.optCursor = 0
	p.stage = stageOptions
}

func (p *Picker) toggle(opt session.CategoryOptions) {
	if p.options.Has(opt) {
		p.options &^= opt
		return
	}
	p.options |= opt
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// View renders the picker
func (p Picker) View() string {
	var b strings.Builder
	if p.stage == stageCategory {
		b.WriteString(titleStyle.Render("Category"))
		b.WriteString("\n\n")
		for i, c := range p.categories {
			b.WriteString(line(i == p.cursor, c.Name()))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓:Move  enter:Options  q:Quit"))
		b.WriteString("\n")
		return b.String()
	}

	cat := p.categories[p.cursor]
	b.WriteString(titleStyle.Render("Options for " + cat.Name()))
	b.WriteString("\n\n")
	if len(p.allowed) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, opt := range p.allowed {
		check := " "
		if p.options.Has(opt) {
			check = "x"
		}
		b.WriteString(line(i == p.optCursor, fmt.Sprintf("[%s] %s", check, opt)))
	}
	b.WriteString("\n")
	b.WriteString(summaryStyle.Render(p.Configuration().String()))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓:Move  space:Toggle  esc:Back  enter:Apply  q:Quit"))
	b.WriteString("\n")
	return b.String()
}

func line(selected bool, text string) string {
	if selected {
		return selectedStyle.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}
