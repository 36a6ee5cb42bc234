package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/solutionmap/pkg/collapsible"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listLeafStyle     = lipgloss.NewStyle().Foreground(colorGray)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseTick is the animation frame interval of the browser.
const browseTick = 16 * time.Millisecond

type tickMsg time.Time

// treeKeys are the browser's key bindings.
type treeKeys struct {
	Up, Down, Toggle, Expand, Collapse, ExpandAll, CollapseAll, Quit key.Binding
}

var defaultTreeKeys = treeKeys{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "toggle")),
	Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "expand")),
	Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "collapse")),
	ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
	CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k treeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Collapse, k.Expand, k.ExpandAll, k.CollapseAll, k.Quit}
}

func (k treeKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// =============================================================================
// TreeModel - Interactive collapsible tree
// =============================================================================

// TreeModel is the bubbletea model for browsing a collapsible tree. Its
// timeline follows wall-clock time, so clicks during a transition are
// dropped as they would be in the browser.
type TreeModel struct {
	Diagram *collapsible.Diagram
	Cursor  int
	Height  int
	Offset  int
	Status  string

	keys   treeKeys
	help   help.Model
	counts map[*hierarchy.Node]int
	last   time.Time
	ticks  bool
}

// NewTreeModel creates a tree model over d.
func NewTreeModel(d *collapsible.Diagram) TreeModel {
	counts := make(map[*hierarchy.Node]int)
	var count func(n *hierarchy.Node) int
	count = func(n *hierarchy.Node) int {
		c := 0
		if n.Kind == hierarchy.KindSolution {
			c = 1
		}
		for _, ch := range n.Children {
			c += count(ch)
		}
		counts[n] = c
		return c
	}
	count(d.Root().Data)
	// ticks is set because Init schedules the first tick.
	return TreeModel{Diagram: d, Height: 20, keys: defaultTreeKeys, help: help.New(), counts: counts, ticks: true}
}

func (m TreeModel) Init() tea.Cmd {
	return m.tick()
}

func (m TreeModel) tick() tea.Cmd {
	return tea.Tick(browseTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// animate starts ticking unless a tick is already pending.
func (m TreeModel) animate() (TreeModel, tea.Cmd) {
	if m.ticks {
		return m, nil
	}
	m.ticks = true
	m.last = time.Time{}
	return m, m.tick()
}

func (m TreeModel) selected() *collapsible.Node {
	nodes := m.Diagram.VisibleNodes()
	if len(nodes) == 0 {
		return nil
	}
	if m.Cursor >= len(nodes) {
		m.Cursor = len(nodes) - 1
	}
	return nodes[m.Cursor]
}

func (m TreeModel) toggle(n *collapsible.Node) (TreeModel, tea.Cmd) {
	res := m.Diagram.Toggle(n)
	m.Status = fmt.Sprintf("%s %s", n.Name(), res)
	if res != collapsible.Applied {
		return m, nil
	}
	return m.animate()
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if m.last.IsZero() {
			m.Diagram.Timeline().Advance(browseTick)
		} else {
			m.Diagram.Timeline().Advance(now.Sub(m.last))
		}
		m.last = now
		if m.Diagram.Timeline().Idle() {
			m.ticks = false
			return m, nil
		}
		m.ticks = true
		return m, m.tick()

	case tea.KeyMsg:
		n := m.selected()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.Cursor > 0 {
				m.Cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.Cursor < len(m.Diagram.VisibleNodes())-1 {
				m.Cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if n != nil {
				return m.toggle(n)
			}
		case key.Matches(msg, m.keys.Expand):
			if n != nil && n.HasChildren() && n.State() == collapsible.Collapsed {
				return m.toggle(n)
			}
		case key.Matches(msg, m.keys.Collapse):
			if n == nil {
				break
			}
			if n.HasChildren() && n.State() == collapsible.Expanded && n.Parent != nil {
				return m.toggle(n)
			}
			if n.Parent != nil {
				m.Cursor = indexOf(m.Diagram.VisibleNodes(), n.Parent)
			}
		case key.Matches(msg, m.keys.ExpandAll):
			m.Status = "expand all " + m.Diagram.ExpandAll().String()
			return m.animate()
		case key.Matches(msg, m.keys.CollapseAll):
			m.Status = "collapse all " + m.Diagram.CollapseAll().String()
			m.Cursor = 0
			return m.animate()
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.Offset = scrollOffset(m.Offset, m.Cursor, m.Height)
	return m, nil
}

func indexOf(nodes []*collapsible.Node, n *collapsible.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return 0
}

// scrollOffset keeps cursor inside the window [offset, offset+height).
func scrollOffset(offset, cursor, height int) int {
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+height {
		return cursor - height + 1
	}
	return offset
}

func glyph(n *collapsible.Node) string {
	switch {
	case !n.HasChildren():
		return "•"
	case n.State() == collapsible.Expanded:
		return "▾"
	default:
		return "▸"
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	nodes := m.Diagram.VisibleNodes()
	cursor := min(m.Cursor, max(len(nodes)-1, 0))
	path := ""
	if len(nodes) > 0 {
		names := make([]string, 0, nodes[cursor].Depth+1)
		for _, p := range nodes[cursor].Path() {
			names = append(names, p.Name())
		}
		path = strings.Join(names, " / ")
	}

	b.WriteString(StyleTitle.Render("Solution Map"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(path))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(nodes))
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		pointer := "  "
		if i == cursor {
			pointer = "▸ "
		}
		line := fmt.Sprintf("%s%s%s %s", pointer, strings.Repeat("  ", n.Depth), glyph(n), n.Name())
		if n.HasChildren() {
			line += listDimStyle.Render(fmt.Sprintf("  %d", m.counts[n.Data]))
		}
		switch {
		case i == cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case !n.HasChildren():
			b.WriteString(listLeafStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := fmt.Sprintf("  [%d/%d]", cursor+1, len(nodes))
	if m.Diagram.Busy() {
		status += "  animating"
	}
	if m.Status != "" {
		status += "  " + m.Status
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}
