package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
}

type editMode int

const (
	editBrowse editMode = iota
	editSearch
	editDate
	editRow
)

// editState is the per-date bill table with inline edit and delete. Both
// categories together, defaulting to today.
type editState struct {
	mode   editMode
	date   time.Time
	rows   []ledger.BillRecord
	cursor int

	searchInput textinput.Model
	dateInput   textinput.Model
	partyInput  textinput.Model
	amtInput    textinput.Model
	field       int
}

func newEditState(now time.Time) editState {
	search := textinput.New()
	search.Placeholder = "search records..."
	search.CharLimit = 80

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10

	party := textinput.New()
	party.CharLimit = 80
	amt := textinput.New()
	amt.CharLimit = 20

	return editState{
		date:        ledger.Day(now),
		searchInput: search,
		dateInput:   date,
		partyInput:  party,
		amtInput:    amt,
	}
}

// refreshEdit re-projects the store through the view's date and name filter.
func (a *App) refreshEdit() {
	var rows []ledger.BillRecord
	query := strings.ToLower(strings.TrimSpace(a.edit.searchInput.Value()))
	for _, r := range a.store.List() {
		if !ledger.SameDay(r.Date, a.edit.date) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.PartyName), query) {
			continue
		}
		rows = append(rows, r)
	}
	a.edit.rows = rows
	if a.edit.cursor >= len(rows) {
		a.edit.cursor = 0
	}
}

func (a *App) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.edit.mode {
	case editSearch:
		switch msg.String() {
		case "esc", "enter":
			a.edit.mode = editBrowse
			a.edit.searchInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.edit.searchInput, cmd = a.edit.searchInput.Update(msg)
		a.refreshEdit()
		return a, cmd

	case editDate:
		switch msg.String() {
		case "esc":
			a.edit.mode = editBrowse
			a.edit.dateInput.Blur()
			return a, nil
		case "enter":
			if d, err := parseDay(a.edit.dateInput.Value()); err == nil {
				a.edit.date = d
			} else {
				a.status = "invalid date, keeping " + ledger.DateKey(a.edit.date)
			}
			a.edit.mode = editBrowse
			a.edit.dateInput.Blur()
			a.refreshEdit()
			return a, nil
		}
		var cmd tea.Cmd
		a.edit.dateInput, cmd = a.edit.dateInput.Update(msg)
		return a, cmd

	case editRow:
		return a.updateEditRow(msg)
	}

	switch msg.String() {
	case "esc", "q":
		a.active = viewMenu
	case "up", "k":
		if a.edit.cursor > 0 {
			a.edit.cursor--
		}
	case "down", "j":
		if a.edit.cursor < len(a.edit.rows)-1 {
			a.edit.cursor++
		}
	case "/":
		a.edit.mode = editSearch
		a.edit.searchInput.Focus()
	case "d":
		a.edit.mode = editDate
		a.edit.dateInput.SetValue(ledger.DateKey(a.edit.date))
		a.edit.dateInput.Focus()
	case "e":
		if len(a.edit.rows) > 0 {
			row := a.edit.rows[a.edit.cursor]
			a.edit.mode = editRow
			a.edit.field = 0
			a.edit.partyInput.SetValue(row.PartyName)
			a.edit.amtInput.SetValue(row.Amount.String())
			a.edit.partyInput.Focus()
			a.edit.amtInput.Blur()
		}
	case "x":
		if len(a.edit.rows) > 0 {
			row := a.edit.rows[a.edit.cursor]
			if err := a.store.Delete(a.ctx, row.ID); err != nil {
				a.status = "warning: " + err.Error()
			} else {
				a.status = "deleted " + row.PartyName
			}
			a.refreshEdit()
		}
	}
	return a, nil
}

func (a *App) updateEditRow(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.edit.mode = editBrowse
		a.edit.partyInput.Blur()
		a.edit.amtInput.Blur()
		return a, nil
	case "tab", "down", "up", "shift+tab":
		a.edit.field = 1 - a.edit.field
		if a.edit.field == 0 {
			a.edit.partyInput.Focus()
			a.edit.amtInput.Blur()
		} else {
			a.edit.amtInput.Focus()
			a.edit.partyInput.Blur()
		}
		return a, nil
	case "enter":
		row := a.edit.rows[a.edit.cursor]
		name := strings.TrimSpace(a.edit.partyInput.Value())
		amt, err := decimal.NewFromString(strings.TrimSpace(a.edit.amtInput.Value()))
		if err != nil {
			a.status = "invalid amount"
			return a, nil
		}
		if err := a.store.Update(a.ctx, row.ID, ledger.Patch{PartyName: &name, Amount: &amt}); err != nil {
			a.status = "warning: " + err.Error()
			return a, nil
		}
		a.edit.mode = editBrowse
		a.edit.partyInput.Blur()
		a.edit.amtInput.Blur()
		a.status = "updated " + name
		a.refreshEdit()
		return a, nil
	}

	var cmd tea.Cmd
	if a.edit.field == 0 {
		a.edit.partyInput, cmd = a.edit.partyInput.Update(msg)
	} else {
		a.edit.amtInput, cmd = a.edit.amtInput.Update(msg)
	}
	return a, cmd
}

func (a *App) viewEdit() string {
	var b strings.Builder
	title := "Today's Bills"
	if !ledger.SameDay(a.edit.date, a.clock()) {
		title = "Bills for " + ledger.DateKey(a.edit.date)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(a.edit.searchInput.View() + "\n\n")

	if len(a.edit.rows) == 0 {
		b.WriteString(subtleStyle.Render("No records for this date.") + "\n")
	}
	for i, r := range a.edit.rows {
		cursor := "  "
		if i == a.edit.cursor && a.edit.mode == editBrowse {
			cursor = cursorStyle.Render("> ")
		}
		cat := headerStyle.Render("SALE")
		if r.Category == ledger.CategoryPurchase {
			cat = vendorStyle.Render("PURCHASE")
		}
		state := finalStyle.Render("FINAL")
		if r.State == ledger.StateStaging {
			state = stagingStyle.Render("STAGING")
		}
		line := fmt.Sprintf("%s%-9s %-24s %10s  %s",
			cursor, cat, r.PartyName, a.cfg.UI.CurrencySymbol+r.Amount.String(), state)
		if i == a.edit.cursor && a.edit.mode == editRow {
			line = fmt.Sprintf("%s%s %s", cursor, a.edit.partyInput.View(), a.edit.amtInput.View())
		}
		b.WriteString(line + "\n")
	}

	if a.edit.mode == editDate {
		b.WriteString("\n" + boxStyle.Render("Custom date\n"+a.edit.dateInput.View()) + "\n")
	}

	switch a.edit.mode {
	case editRow:
		b.WriteString("\n" + helpStyle.Render("tab switch field · enter save · esc cancel"))
	default:
		b.WriteString("\n" + helpStyle.Render("/ search · d date · e edit · x delete · esc back"))
	}
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return appStyle.Render(b.String())
}
