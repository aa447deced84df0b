package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/objgraph/pkg/envelope"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// SnapshotItem is one row of the snapshot picker.
type SnapshotItem struct {
	ID    string
	Stats envelope.Stats
	// Err is set when the snapshot could not be loaded.
	Err error
}

// SnapshotListModel is the bubbletea model for interactive snapshot
// selection. Broken snapshots are shown but cannot be selected.
type SnapshotListModel struct {
	Items    []SnapshotItem
	Cursor   int
	Offset   int
	Height   int
	Selected *SnapshotItem
}

// NewSnapshotListModel creates a picker over items.
func NewSnapshotListModel(items []SnapshotItem) SnapshotListModel {
	return SnapshotListModel{Items: items, Height: 15}
}

func (m SnapshotListModel) Init() tea.Cmd {
	return nil
}

func (m SnapshotListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Items) == 0 || m.Items[m.Cursor].Err != nil {
				return m, nil
			}
			item := m.Items[m.Cursor]
			m.Selected = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m SnapshotListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Snapshot"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if it.Err != nil {
			rows = append(rows, []string{cursor, it.ID, "—", "—", "—", "unreadable"})
			continue
		}
		rows = append(rows, []string{
			cursor,
			it.ID,
			strconv.Itoa(it.Stats.Records),
			strconv.Itoa(it.Stats.PayloadBytes),
			it.Stats.RootKind,
			strings.Join(it.Stats.Names, ", "),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Snapshot", "Records", "Bytes", "Root", "Names").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Items[idx].Err != nil {
				base = base.Foreground(colorDim)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Items)), len(m.Items))))

	return b.String()
}
