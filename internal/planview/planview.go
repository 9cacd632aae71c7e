// Package planview is a terminal viewer for a stored weekly plan and the
// student's skill summary.
package planview

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
	"github.com/abhisek/skillquest/internal/weekly"
)

type tab int

const (
	tabWeek tab = iota
	tabSkills
)

// Model is the viewer's Bubble Tea model.
type Model struct {
	student string
	plan    weekly.Plan
	skills  []engine.SkillView

	tab   tab
	day   int
	quest int

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// New builds a viewer. skills may be empty, in which case the skills tab
// says so.
func New(student string, plan weekly.Plan, skills []engine.SkillView) Model {
	return Model{
		student: student,
		plan:    plan,
		skills:  skills,
		keys:    defaultKeys(),
		help:    help.New(),
	}
}

// Run starts the viewer full screen and blocks until it exits.
func Run(m Model) error {
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run plan viewer: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Tab):
			if m.tab == tabWeek {
				m.tab = tabSkills
			} else {
				m.tab = tabWeek
			}
		case key.Matches(msg, m.keys.PrevDay):
			m.moveDay(-1)
		case key.Matches(msg, m.keys.NextDay):
			m.moveDay(1)
		case key.Matches(msg, m.keys.Up):
			m.moveQuest(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveQuest(1)
		}
	}
	return m, nil
}

func (m *Model) moveDay(delta int) {
	if len(m.plan.Days) == 0 {
		return
	}
	m.day = min(max(m.day+delta, 0), len(m.plan.Days)-1)
	m.quest = 0
}

func (m *Model) moveQuest(delta int) {
	quests := m.dayQuests()
	if len(quests) == 0 {
		return
	}
	m.quest = min(max(m.quest+delta, 0), len(quests)-1)
}

func (m Model) dayQuests() []quest.Quest {
	if m.day >= len(m.plan.Days) {
		return nil
	}
	return m.plan.Days[m.day].Quests
}

// Day returns the index of the day on screen.
func (m Model) Day() int { return m.day }

// Quest returns the index of the highlighted quest.
func (m Model) Quest() int { return m.quest }

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	title := fmt.Sprintf("%s · week of %s", m.plan.Goal, m.plan.WeekStart)
	status := fmt.Sprintf("grade %d", m.plan.Grade)
	header := layout.RenderHeader(title, status, m.width)
	footer := " " + m.help.View(m.keys)

	v.SetContent(layout.RenderFrame(header, m.Content(m.width), footer, m.width, m.height))
	return v
}

// Content renders the active tab at width without the frame.
func (m Model) Content(width int) string {
	if m.tab == tabSkills {
		return m.renderSkills(width)
	}
	return m.renderWeek(width)
}

func (m Model) renderWeek(width int) string {
	if len(m.plan.Days) == 0 {
		return theme.Hint.Render("  This plan has no days.")
	}

	var tabs []string
	for i, d := range m.plan.Days {
		label := fmt.Sprintf(" %s ", d.Date[5:])
		if i == m.day {
			tabs = append(tabs, theme.Selected.Underline(true).Render(label))
		} else {
			tabs = append(tabs, theme.Subtitle.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	b.WriteString(theme.Subtitle.Render("  Focus: "))
	focus := make([]string, len(m.plan.Focus))
	for i, f := range m.plan.Focus {
		focus[i] = f.Skill.DisplayName()
	}
	b.WriteString(theme.Body.Render(strings.Join(focus, ", ")))
	b.WriteString("\n\n")

	quests := m.dayQuests()
	if len(quests) == 0 {
		b.WriteString(theme.Hint.Render("  Rest day: the weekly budget leaves no quest for today."))
		return b.String()
	}
	cardWidth := max(width-4, 20)
	for i, q := range quests {
		style := theme.Card
		if i == m.quest {
			style = theme.ActiveCard
		}
		b.WriteString(style.Width(cardWidth).Render(renderQuest(q)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderQuest(q quest.Quest) string {
	skillNames := make([]string, 0, len(q.PrimarySkills))
	for _, s := range q.Skills() {
		skillNames = append(skillNames, s.DisplayName())
	}
	head := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.QuestType(q.Type()), "  ",
		theme.Body.Bold(true).Render(q.Title), "  ",
		theme.Hint.Render(fmt.Sprintf("%d min", q.EstimatedMinutes)),
	)
	lines := []string{head, theme.Subtitle.Render(strings.Join(skillNames, " · "))}
	switch c := q.Content.(type) {
	case quest.Reflection:
		lines = append(lines, theme.Body.Render(c.Prompt))
	case quest.ChoiceScenario:
		lines = append(lines, theme.Body.Render(c.Scenario))
		for i, choice := range c.Choices {
			lines = append(lines, theme.Subtitle.Render(fmt.Sprintf("  %d. %s", i+1, choice)))
		}
	case quest.MiniGame:
		lines = append(lines, theme.Body.Render(fmt.Sprintf("%d %s questions", c.QuestionCount, c.Game)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSkills(width int) string {
	if len(m.skills) == 0 {
		return theme.Hint.Render("  No activity recorded yet.")
	}
	barWidth := min(max(width/2, 30), 60)

	var b strings.Builder
	for _, sv := range m.skills {
		bar := components.ScoreBar{
			Label: sv.Skill.DisplayName(),
			Score: sv.Score,
			Width: barWidth,
			Fill:  theme.BandColor(sv.Guide.Band),
		}
		fmt.Fprintf(&b, "  %s %s  %s  %s\n",
			bar.View(), theme.Trend(sv.Trend), theme.Band(sv.Guide.Band), theme.Comparison(sv.Guide.Comparison))
	}
	return b.String()
}
