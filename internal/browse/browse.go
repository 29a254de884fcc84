// Package browse is a full-screen explorer over session bindings and the
// scopes reachable from them.
package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gcint/internal/namespace"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// frame is one level of the browse stack.
type frame struct {
	title  string
	names  []string
	get    func(name string) (any, error)
	cursor int
}

type Model struct {
	stack     []frame
	filter    string
	filtering bool
	detail    string
	err       error

	width  int
	height int
}

func New(bindings namespace.Table) Model {
	root := frame{
		title: "session",
		names: bindings.Names(),
		get: func(name string) (any, error) {
			v, ok := bindings[name]
			if !ok {
				return nil, fmt.Errorf("no binding %q", name)
			}
			return v, nil
		},
	}
	return Model{stack: []frame{root}, width: 80, height: 24}
}

func scopeFrame(ns namespace.Namespace) frame {
	title := ns.Name()
	if title == "" {
		title = "(global)"
	}
	return frame{title: title, names: ns.Members(), get: ns.Lookup}
}

// Run starts the browser on the terminal.
func Run(bindings namespace.Table) error {
	_, err := tea.NewProgram(New(bindings), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.stack = append([]frame(nil), m.stack...)
		if m.filtering {
			return m.filterKey(msg), nil
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	top := &m.stack[len(m.stack)-1]
	visible := m.visible()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if top.cursor > 0 {
			top.cursor--
		}
	case "down", "j":
		if top.cursor < len(visible)-1 {
			top.cursor++
		}
	case "/":
		m.filtering = true
		m.filter = ""
		top.cursor = 0
	case "enter", "right", "l":
		if len(visible) == 0 {
			return m, nil
		}
		m.open(visible[top.cursor])
	case "esc", "left", "h", "backspace":
		m.back()
	}
	return m, nil
}

func (m Model) filterKey(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
	}
	m.stack[len(m.stack)-1].cursor = 0
	return m
}

// open descends into scopes and shows everything else in the detail pane.
func (m *Model) open(name string) {
	top := m.stack[len(m.stack)-1]
	v, err := top.get(name)
	m.err = err
	m.detail = ""
	if err != nil {
		return
	}
	if ns, ok := v.(namespace.Namespace); ok {
		m.stack = append(m.stack, scopeFrame(ns))
		m.filter = ""
		return
	}
	m.detail = fmt.Sprintf("%s = %v", name, v)
}

func (m *Model) back() {
	switch {
	case m.detail != "" || m.err != nil:
		m.detail, m.err = "", nil
	case m.filter != "":
		m.filter = ""
	case len(m.stack) > 1:
		m.stack = m.stack[:len(m.stack)-1]
	}
}

func (m Model) visible() []string {
	top := m.stack[len(m.stack)-1]
	if m.filter == "" {
		return top.names
	}
	f := strings.ToLower(m.filter)
	var out []string
	for _, n := range top.names {
		if strings.Contains(strings.ToLower(n), f) {
			out = append(out, n)
		}
	}
	return out
}

// Path is the chain of scope titles from the session down.
func (m Model) Path() []string {
	out := make([]string, len(m.stack))
	for i, f := range m.stack {
		out[i] = f.title
	}
	return out
}

// Selected is the name under the cursor, if any.
func (m Model) Selected() string {
	visible := m.visible()
	top := m.stack[len(m.stack)-1]
	if top.cursor < len(visible) {
		return visible[top.cursor]
	}
	return ""
}

func (m Model) View() string {
	var b strings.Builder
	top := m.stack[len(m.stack)-1]

	b.WriteString("\n")
	b.WriteString("   " + cyan.Render(strings.Join(m.Path(), " › ")) + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 40)) + "\n\n")

	visible := m.visible()
	rows := m.height - 10
	if rows < 5 {
		rows = 5
	}
	start := 0
	if top.cursor >= rows {
		start = top.cursor - rows + 1
	}
	for i := start; i < len(visible) && i < start+rows; i++ {
		if i == top.cursor {
			b.WriteString("   " + cyan.Render("▸ ") + white.Render(visible[i]) + "\n")
		} else {
			b.WriteString("     " + dim.Render(visible[i]) + "\n")
		}
	}
	if len(visible) == 0 {
		b.WriteString("     " + dimmer.Render("(empty)") + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	case m.detail != "":
		b.WriteString("   " + magenta.Render(m.detail) + "\n")
	}
	if m.filtering || m.filter != "" {
		b.WriteString("   " + dim.Render("filter: ") + white.Render(m.filter) + "\n")
	}
	b.WriteString(dim.Render("   ↑↓ select   enter open   esc back   / filter   q quit") + "\n")
	return b.String()
}
