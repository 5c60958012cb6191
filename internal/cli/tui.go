package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listStoredStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// FamilyListModel - Interactive family selection
// =============================================================================

// FamilyListModel is the bubbletea model behind `fontfetch browse`. Typing
// filters the list; arrows move; enter picks.
type FamilyListModel struct {
	Families []string
	Stored   map[string]bool // families with at least one stored file
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected string

	visible []string
}

// NewFamilyListModel creates a model over families.
func NewFamilyListModel(families []string, stored map[string]bool) FamilyListModel {
	m := FamilyListModel{Families: families, Stored: stored, Height: 15}
	m.visible = filterFamilies(families, "")
	return m
}

func (m FamilyListModel) Init() tea.Cmd {
	return nil
}

func (m FamilyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.visible) > 0 {
				m.Selected = m.visible[m.Cursor]
				return m, tea.Quit
			}
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.setFilter(string(r[:len(r)-1]))
			}
		case tea.KeyRunes, tea.KeySpace:
			m.setFilter(m.Filter + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

func (m *FamilyListModel) setFilter(f string) {
	m.Filter = f
	m.visible = filterFamilies(m.Families, f)
	m.Cursor = 0
	m.Offset = 0
}

// Visible returns the families matching the current filter.
func (m FamilyListModel) Visible() []string { return m.visible }

func (m FamilyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Font Family"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ acquire  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleHighlight.Render("/ ") + m.Filter)
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	for i := m.Offset; i < end; i++ {
		name := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.Stored[name] {
			mark = listStoredStyle.Render("●")
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, name)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  ● stored", min(m.Cursor+1, len(m.visible)), len(m.visible))))
	return b.String()
}
