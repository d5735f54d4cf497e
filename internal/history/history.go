// Package history renders an interactive browser over the sent-jobs store,
// for reviewing what past runs delivered.
package history

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SamDev98/ats-crawler/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(1, 0, 1, 2)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 0, 0, 2)

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(10)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

type historyModel struct {
	records []model.SentRecord
	cursor  int
	state   viewState
}

func (m historyModel) Init() tea.Cmd {
	return nil
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.state == viewList && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.state == viewList && m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case "enter":
			if m.state == viewList && len(m.records) > 0 {
				m.state = viewDetail
			}
		case "esc":
			m.state = viewList
		}
	}
	return m, nil
}

func (m historyModel) View() string {
	if m.state == viewDetail {
		return m.detailView()
	}
	return m.listView()
}

func (m historyModel) listView() string {
	s := titleStyle.Render(fmt.Sprintf("Sent Jobs — %d most recent", len(m.records)))
	s += "\n"

	if len(m.records) == 0 {
		s += itemStyle.Render("nothing sent yet") + "\n"
	}

	for i, r := range m.records {
		label := fmt.Sprintf("%s  %s @ %s (%d)",
			r.SentAt.Format("2006-01-02"), r.Title, r.Company, r.Score)
		if i == m.cursor {
			s += selectedStyle.Render("> "+label) + "\n"
		} else {
			s += itemStyle.Render(label) + "\n"
		}
	}

	s += hintStyle.Render("↑/↓/j/k navigate  enter detail  q quit")
	return s
}

func (m historyModel) detailView() string {
	r := m.records[m.cursor]

	row := func(label, value string) string {
		return detailLabelStyle.Render(label) + value + "\n"
	}

	s := titleStyle.Render(r.Title) + "\n"
	s += row("Company", r.Company)
	s += row("Source", r.Source)
	s += row("Location", r.Location)
	s += row("Score", fmt.Sprintf("%d", r.Score))
	s += row("Sent", r.SentAt.Format("2006-01-02 15:04"))
	s += row("URL", r.URL)
	s += hintStyle.Render("esc back  q quit")
	return s
}

// Run shows the interactive history browser over the given records, newest
// first.
func Run(records []model.SentRecord) error {
	m := historyModel{records: records}
	_, err := tea.NewProgram(m).Run()
	return err
}
