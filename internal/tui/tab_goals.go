package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/tui/components"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

// goalsState tracks the goals tab selection.
type goalsState struct {
	cursor   int
	offset   int
	detail   bool
	item     int
	category model.Category // empty shows every category
}

func (s *goalsState) reset() {
	s.cursor, s.offset, s.item = 0, 0, 0
	s.detail = false
}

func (s *goalsState) clamp(goals []model.Goal) {
	s.cursor = min(max(s.cursor, 0), max(len(goals)-1, 0))
	if len(goals) == 0 {
		s.detail = false
		s.item = 0
		return
	}
	n := len(goalItems(goals[s.cursor]))
	s.item = min(max(s.item, 0), max(n-1, 0))
}

func (s *goalsState) move(delta int, goals []model.Goal) {
	if s.detail && len(goals) > 0 {
		s.item += delta
	} else {
		s.cursor += delta
		s.item = 0
	}
	s.clamp(goals)
}

type itemKind int

const (
	itemMonth itemKind = iota
	itemTask
	itemSubGoal
)

// goalItem is one selectable row in a goal's detail pane.
type goalItem struct {
	kind    itemKind
	monthID string
	id      string
	text    string
	done    bool
}

// goalItems flattens a goal's payload into selectable rows: each month
// followed by its tasks for a plan, or the checklist for subgoals.
func goalItems(g model.Goal) []goalItem {
	var items []goalItem
	switch g.Type() {
	case model.GoalPlan:
		plan, _ := g.Plan()
		for _, m := range plan.Months {
			items = append(items, goalItem{kind: itemMonth, monthID: m.ID, id: m.ID, text: model.MonthLabel(m.Name)})
			for _, t := range m.Tasks {
				items = append(items, goalItem{kind: itemTask, monthID: m.ID, id: t.ID, text: t.Text, done: t.Completed})
			}
		}
	case model.GoalSubGoals:
		subs, _ := g.SubGoals()
		for _, s := range subs.SubGoals {
			items = append(items, goalItem{kind: itemSubGoal, id: s.ID, text: s.Text, done: s.Completed})
		}
	}
	return items
}

func (a App) selectedGoal() (model.Goal, bool) {
	if a.list.cursor < 0 || a.list.cursor >= len(a.goals) {
		return model.Goal{}, false
	}
	return a.goals[a.list.cursor], true
}

func (a App) selectedItem() (goalItem, bool) {
	g, ok := a.selectedGoal()
	if !ok {
		return goalItem{}, false
	}
	items := goalItems(g)
	if a.list.item < 0 || a.list.item >= len(items) {
		return goalItem{}, false
	}
	return items[a.list.item], true
}

// updateGoalsKey handles keys on the goals tab. ok is false when the key
// is not a goals binding.
func (a App) updateGoalsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.list.move(1, a.goals)
		return a, nil, true
	case "k", "up":
		a.list.move(-1, a.goals)
		return a, nil, true
	case "G":
		a.list.move(len(a.goals)+1000, a.goals)
		return a, nil, true
	case "c":
		a.list.category = nextCategory(a.list.category)
		a.list.reset()
		a.sync()
		return a, nil, true
	case "n":
		a.goalVals = &goalFormValues{}
		a.goalForm = newGoalForm(a.goalVals)
		if a.width > 0 {
			a.goalForm = a.goalForm.WithWidth(min(a.width, 70)).WithHeight(a.height)
		}
		return a, a.goalForm.Init(), true
	case "enter", "l":
		if !a.list.detail {
			if _, ok := a.selectedGoal(); ok {
				a.list.detail = true
				a.list.item = 0
			}
			return a, nil, true
		}
		return a.toggleSelected()
	case "esc", "backspace":
		a.list.detail = false
		return a, nil, true
	case " ", "space", "t":
		if a.list.detail {
			return a.toggleSelected()
		}
		return a, nil, true
	case "d":
		return a.deleteSelected()
	case "i":
		return a.openAddPrompt()
	case "m":
		if g, ok := a.selectedGoal(); ok && g.Type() == model.GoalPlan {
			return a.openPrompt(promptMonth, g.ID, "", "Month (e.g. march)")
		}
		return a, nil, true
	case "+", "=":
		if g, ok := a.selectedGoal(); ok && g.Type() == model.GoalSavings {
			return a.openPrompt(promptDeposit, g.ID, "", "Deposit amount")
		}
		return a, nil, true
	case "-":
		if g, ok := a.selectedGoal(); ok && g.Type() == model.GoalSavings {
			return a.openPrompt(promptWithdraw, g.ID, "", "Withdraw amount")
		}
		return a, nil, true
	}
	return a, nil, false
}

func nextCategory(c model.Category) model.Category {
	if c == "" {
		return model.Categories[0].ID
	}
	for i, info := range model.Categories {
		if info.ID == c && i+1 < len(model.Categories) {
			return model.Categories[i+1].ID
		}
	}
	return ""
}

func (a App) toggleSelected() (tea.Model, tea.Cmd, bool) {
	g, ok := a.selectedGoal()
	it, itemOK := a.selectedItem()
	if !ok || !itemOK {
		return a, nil, true
	}

	switch it.kind {
	case itemTask:
		cmd := a.run("toggled "+it.text, func(ctx context.Context) error {
			_, err := a.eng.ToggleTask(ctx, g.ID, it.monthID, it.id)
			return err
		})
		return a, cmd, true
	case itemSubGoal:
		cmd := a.run("toggled "+it.text, func(ctx context.Context) error {
			_, err := a.eng.ToggleSubGoal(ctx, g.ID, it.id)
			return err
		})
		return a, cmd, true
	}
	return a, nil, true
}

func (a App) deleteSelected() (tea.Model, tea.Cmd, bool) {
	g, ok := a.selectedGoal()
	if !ok {
		return a, nil, true
	}

	if !a.list.detail {
		cmd := a.run("deleted "+g.Title, func(ctx context.Context) error {
			return a.eng.DeleteGoal(ctx, g.ID)
		})
		return a, cmd, true
	}

	it, ok := a.selectedItem()
	if !ok {
		return a, nil, true
	}
	var fn func(ctx context.Context) error
	switch it.kind {
	case itemMonth:
		fn = func(ctx context.Context) error { return a.eng.DeleteMonth(ctx, g.ID, it.id) }
	case itemTask:
		fn = func(ctx context.Context) error { return a.eng.DeleteTask(ctx, g.ID, it.monthID, it.id) }
	case itemSubGoal:
		fn = func(ctx context.Context) error { return a.eng.DeleteSubGoal(ctx, g.ID, it.id) }
	}
	return a, a.run("deleted "+it.text, fn), true
}

func (a App) openAddPrompt() (tea.Model, tea.Cmd, bool) {
	g, ok := a.selectedGoal()
	if !ok {
		return a, nil, true
	}
	switch g.Type() {
	case model.GoalSubGoals:
		return a.openPrompt(promptSubGoal, g.ID, "", "New subgoal")
	case model.GoalPlan:
		it, ok := a.selectedItem()
		if !a.list.detail || !ok {
			// No month to attach a task to yet
			return a.openPrompt(promptMonth, g.ID, "", "Month (e.g. march)")
		}
		return a.openPrompt(promptTask, g.ID, it.monthID, "New task")
	}
	return a, nil, true
}

// ─── Inline prompt ──────────────────────────────────────────────

type promptKind int

const (
	promptNone promptKind = iota
	promptTask
	promptSubGoal
	promptMonth
	promptDeposit
	promptWithdraw
)

type promptState struct {
	kind    promptKind
	goalID  string
	monthID string
	input   textinput.Model
}

func (p promptState) active() bool { return p.kind != promptNone }

func (a App) openPrompt(kind promptKind, goalID, monthID, placeholder string) (tea.Model, tea.Cmd, bool) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 50
	ti.Focus()

	a.prompt = promptState{kind: kind, goalID: goalID, monthID: monthID, input: ti}
	return a, textinput.Blink, true
}

func (a App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.prompt = promptState{}
		return a, nil
	case "enter":
		p := a.prompt
		a.prompt = promptState{}
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return a, nil
		}
		cmd, err := a.submitPrompt(p, value)
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		return a, cmd
	}

	var cmd tea.Cmd
	a.prompt.input, cmd = a.prompt.input.Update(msg)
	return a, cmd
}

func (a *App) submitPrompt(p promptState, value string) (tea.Cmd, error) {
	switch p.kind {
	case promptTask:
		return a.run("added "+value, func(ctx context.Context) error {
			_, err := a.eng.AddTask(ctx, p.goalID, p.monthID, value)
			return err
		}), nil
	case promptSubGoal:
		return a.run("added "+value, func(ctx context.Context) error {
			_, err := a.eng.AddSubGoal(ctx, p.goalID, value)
			return err
		}), nil
	case promptMonth:
		m, ok := model.LookupMonth(value)
		if !ok {
			return nil, fmt.Errorf("unknown month %q", value)
		}
		return a.run("added "+m.Label, func(ctx context.Context) error {
			_, err := a.eng.AddMonth(ctx, p.goalID, m.Key, m.Order)
			return err
		}), nil
	case promptDeposit, promptWithdraw:
		v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%q is not an amount", value)
		}
		label := "deposited " + cli.FormatAmount(v)
		if p.kind == promptWithdraw {
			v = -v
			label = "withdrew " + cli.FormatAmount(-v)
		}
		return a.run(label, func(ctx context.Context) error {
			return a.eng.UpdateSavingsAmount(ctx, p.goalID, v)
		}), nil
	}
	return nil, nil
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderGoalsTab(cw, h int) string {
	t := theme.Active

	listW := cw
	detailW := 0
	if !a.isCompactLayout() {
		listW = cw * 2 / 5
		detailW = cw - listW
	}

	list := a.renderGoalList(listW, h)
	if a.isCompactLayout() && a.list.detail {
		list = a.renderGoalDetail(cw)
	}

	var body string
	if detailW > 0 {
		body = components.CardRow([]string{list, a.renderGoalDetail(detailW)})
	} else {
		body = list
	}

	if a.prompt.active() {
		label := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(" › ")
		body += "\n" + label + a.prompt.input.View()
	}
	return body
}

func (a App) renderGoalList(w, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	title := fmt.Sprintf("%d goals · %s", len(a.goals), yearLabel(a.year, a.years))
	if a.list.category != "" {
		title += " · " + a.list.category.Info().Label
	}

	if len(a.goals) == 0 {
		hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No goals yet. Press n to add one.")
		return components.ContentCard(title, hint, w)
	}

	// Two lines per goal plus card chrome
	visible := max((h-3)/2, 1)
	offset := a.list.offset
	if a.list.cursor < offset {
		offset = a.list.cursor
	}
	if a.list.cursor >= offset+visible {
		offset = a.list.cursor - visible + 1
	}

	var rows []string
	for i := offset; i < len(a.goals) && i < offset+visible; i++ {
		g := a.goals[i]
		bg := t.Surface
		if i == a.list.cursor {
			bg = t.SurfaceHover
		}
		titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).Bold(i == a.list.cursor).Width(inner)
		meta := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Category.Info().Color)).Background(bg).
			Render(cli.Truncate(g.Category.Info().Label, 14)+" ")
		bar := components.ProgressBar(model.Progress(g), max(inner-lipgloss.Width(meta)-6, 4))

		rows = append(rows,
			titleStyle.Render(typeGlyph(g.Type())+" "+cli.Truncate(g.Title, inner-2)),
			meta+bar)
	}

	if a.list.detail {
		return components.ContentCard(title, strings.Join(rows, "\n"), w)
	}
	return components.FocusedCard(title, strings.Join(rows, "\n"), w)
}

func typeGlyph(t model.GoalType) string {
	switch t {
	case model.GoalPlan:
		return "▦"
	case model.GoalSavings:
		return "$"
	default:
		return "☑"
	}
}

func (a App) renderGoalDetail(w int) string {
	t := theme.Active
	g, ok := a.selectedGoal()
	if !ok {
		return components.ContentCard("Details", "", w)
	}
	inner := components.CardInnerWidth(w)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	var b strings.Builder
	if g.Description != "" {
		b.WriteString(muted.Width(inner).Render(g.Description))
		b.WriteString("\n")
	}
	total, done := model.TaskCounts(g)
	b.WriteString(components.ProgressBar(model.Progress(g), max(inner-6, 4)))
	b.WriteString("\n")
	if total > 0 {
		b.WriteString(muted.Render(fmt.Sprintf("%d of %d done", done, total)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s, ok := g.Savings(); ok {
		amount := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
		b.WriteString(amount.Render(cli.FormatAmount(s.CurrentAmount)))
		if s.TargetAmount != nil {
			b.WriteString(muted.Render(" of " + cli.FormatAmount(*s.TargetAmount)))
		}
		b.WriteString("\n")
		b.WriteString(muted.Render("+ deposit  - withdraw"))
	}

	items := goalItems(g)
	for i, it := range items {
		bg := t.Surface
		if a.list.detail && i == a.list.item {
			bg = t.SurfaceHover
		}
		switch it.kind {
		case itemMonth:
			b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Background(bg).Bold(true).Width(inner).Render(it.text))
		default:
			box := "[ ] "
			fg := t.TextPrimary
			if it.done {
				box = "[x] "
				fg = t.TextMuted
			}
			if model.IsTemporaryID(it.id) {
				fg = t.TextDim
			}
			indent := ""
			if it.kind == itemTask {
				indent = "  "
			}
			b.WriteString(lipgloss.NewStyle().Foreground(fg).Background(bg).Width(inner).
				Render(indent + box + cli.Truncate(it.text, inner-len(indent)-4)))
		}
		b.WriteString("\n")
	}
	if len(items) == 0 && g.Type() != model.GoalSavings {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Nothing here yet. Press i to add."))
	}

	title := g.Title
	if a.list.detail {
		return components.FocusedCard(title, strings.TrimRight(b.String(), "\n"), w)
	}
	return components.ContentCard(title, strings.TrimRight(b.String(), "\n"), w)
}
