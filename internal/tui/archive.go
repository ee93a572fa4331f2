package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

type archiveMode int

const (
	archiveLocked archiveMode = iota
	archiveFilter
	archiveBrowse
	archiveEdit
)

// archiveState is the PIN form and, once through it, the filter panel plus
// results list.
type archiveState struct {
	mode   archiveMode
	cursor int
	rows   []ledger.BillRecord

	pinInput  textinput.Model
	fromInput textinput.Model
	toInput   textinput.Model
	nameInput textinput.Model
	minInput  textinput.Model
	maxInput  textinput.Model
	field     int

	partyInput textinput.Model
	amtInput   textinput.Model
	editField  int

	suggestion string
}

func newArchiveState() archiveState {
	pin := textinput.New()
	pin.Placeholder = "PIN"
	pin.EchoMode = textinput.EchoPassword
	pin.CharLimit = 4
	pin.Focus()

	mk := func(ph string, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = ph
		in.CharLimit = limit
		return in
	}
	return archiveState{
		pinInput:   pin,
		fromInput:  mk("from YYYY-MM-DD", 10),
		toInput:    mk("to YYYY-MM-DD", 10),
		nameInput:  mk("party name", 80),
		minInput:   mk("min amount", 20),
		maxInput:   mk("max amount", 20),
		partyInput: mk("party name", 80),
		amtInput:   mk("amount", 20),
	}
}

func (a *App) archiveInputs() []*textinput.Model {
	s := &a.archiveV
	return []*textinput.Model{&s.fromInput, &s.toInput, &s.nameInput, &s.minInput, &s.maxInput}
}

func (a *App) updateArchive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.archiveV.mode {
	case archiveLocked:
		switch msg.String() {
		case "esc":
			a.active = viewMenu
			return a, nil
		case "enter":
			if a.archive.Unlock(a.archiveV.pinInput.Value()) {
				a.archiveV.mode = archiveFilter
				a.archiveV.pinInput.Blur()
				a.archiveV.fromInput.Focus()
				a.status = ""
			} else {
				// wrong PIN: re-prompt, expose nothing
				a.archiveV.pinInput.SetValue("")
				a.status = "wrong PIN"
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.archiveV.pinInput, cmd = a.archiveV.pinInput.Update(msg)
		return a, cmd

	case archiveFilter:
		inputs := a.archiveInputs()
		switch msg.String() {
		case "esc":
			a.active = viewMenu
			return a, nil
		case "tab", "down":
			a.archiveV.field = (a.archiveV.field + 1) % len(inputs)
			a.focusArchiveField()
			return a, nil
		case "shift+tab", "up":
			a.archiveV.field = (a.archiveV.field + len(inputs) - 1) % len(inputs)
			a.focusArchiveField()
			return a, nil
		case "enter":
			return a.runArchiveSearch()
		}
		var cmd tea.Cmd
		*inputs[a.archiveV.field], cmd = inputs[a.archiveV.field].Update(msg)
		return a, cmd

	case archiveEdit:
		return a.updateArchiveEdit(msg)
	}

	// browse results
	switch msg.String() {
	case "esc":
		a.archiveV.mode = archiveFilter
		a.focusArchiveField()
	case "q":
		a.active = viewMenu
	case "up", "k":
		if a.archiveV.cursor > 0 {
			a.archiveV.cursor--
		}
	case "down", "j":
		if a.archiveV.cursor < len(a.archiveV.rows)-1 {
			a.archiveV.cursor++
		}
	case "e":
		if len(a.archiveV.rows) > 0 {
			row := a.archiveV.rows[a.archiveV.cursor]
			a.archiveV.mode = archiveEdit
			a.archiveV.editField = 0
			a.archiveV.partyInput.SetValue(row.PartyName)
			a.archiveV.amtInput.SetValue(row.Amount.String())
			a.archiveV.partyInput.Focus()
			a.archiveV.amtInput.Blur()
		}
	case "x":
		if len(a.archiveV.rows) > 0 {
			row := a.archiveV.rows[a.archiveV.cursor]
			if err := a.archive.Delete(a.ctx, row.ID); err != nil {
				a.status = "warning: " + err.Error()
			} else {
				a.status = "deleted " + row.PartyName
			}
			return a.runArchiveSearch()
		}
	}
	return a, nil
}

func (a *App) updateArchiveEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.archiveV.mode = archiveBrowse
		a.archiveV.partyInput.Blur()
		a.archiveV.amtInput.Blur()
		return a, nil
	case "tab", "down", "up", "shift+tab":
		a.archiveV.editField = 1 - a.archiveV.editField
		if a.archiveV.editField == 0 {
			a.archiveV.partyInput.Focus()
			a.archiveV.amtInput.Blur()
		} else {
			a.archiveV.amtInput.Focus()
			a.archiveV.partyInput.Blur()
		}
		return a, nil
	case "enter":
		row := a.archiveV.rows[a.archiveV.cursor]
		name := strings.TrimSpace(a.archiveV.partyInput.Value())
		amt, err := decimal.NewFromString(strings.TrimSpace(a.archiveV.amtInput.Value()))
		if err != nil {
			a.status = "invalid amount"
			return a, nil
		}
		if err := a.archive.Edit(a.ctx, row.ID, ledger.Patch{PartyName: &name, Amount: &amt}); err != nil {
			a.status = "warning: " + err.Error()
			return a, nil
		}
		a.archiveV.partyInput.Blur()
		a.archiveV.amtInput.Blur()
		a.status = "updated " + name
		return a.runArchiveSearch()
	}

	var cmd tea.Cmd
	if a.archiveV.editField == 0 {
		a.archiveV.partyInput, cmd = a.archiveV.partyInput.Update(msg)
	} else {
		a.archiveV.amtInput, cmd = a.archiveV.amtInput.Update(msg)
	}
	return a, cmd
}

func (a *App) focusArchiveField() {
	for i, in := range a.archiveInputs() {
		if i == a.archiveV.field {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// buildFilter assembles the conjunction predicate from the filter fields.
// Blank fields stay open-ended.
func (a *App) buildFilter() (ledger.Filter, error) {
	var f ledger.Filter
	if s := strings.TrimSpace(a.archiveV.fromInput.Value()); s != "" {
		d, err := parseDay(s)
		if err != nil {
			return f, fmt.Errorf("invalid from date: %s", s)
		}
		f.From = &d
	}
	if s := strings.TrimSpace(a.archiveV.toInput.Value()); s != "" {
		d, err := parseDay(s)
		if err != nil {
			return f, fmt.Errorf("invalid to date: %s", s)
		}
		f.To = &d
	}
	f.Name = strings.TrimSpace(a.archiveV.nameInput.Value())
	if s := strings.TrimSpace(a.archiveV.minInput.Value()); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return f, fmt.Errorf("invalid min amount: %s", s)
		}
		f.MinAmount = &v
	}
	if s := strings.TrimSpace(a.archiveV.maxInput.Value()); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return f, fmt.Errorf("invalid max amount: %s", s)
		}
		f.MaxAmount = &v
	}
	return f, nil
}

func (a *App) runArchiveSearch() (tea.Model, tea.Cmd) {
	f, err := a.buildFilter()
	if err != nil {
		a.status = err.Error()
		return a, nil
	}
	rows, err := a.archive.Search(f)
	if err != nil {
		a.status = "error: " + err.Error()
		return a, nil
	}
	a.archiveV.rows = rows
	a.archiveV.cursor = 0
	a.archiveV.mode = archiveBrowse
	a.archiveV.suggestion = ""
	if len(rows) == 0 && f.Name != "" {
		a.archiveV.suggestion = a.archive.Suggest(f.Name)
	}
	a.status = fmt.Sprintf("%d records", len(rows))
	return a, nil
}

func (a *App) viewArchive() string {
	var b strings.Builder

	if a.archiveV.mode == archiveLocked {
		b.WriteString(titleStyle.Render("Merchant Vault") + "\n\n")
		b.WriteString(boxStyle.Render("Enter PIN to unlock the archive\n"+a.archiveV.pinInput.View()) + "\n")
		b.WriteString(helpStyle.Render("enter unlock · esc back"))
		if a.status != "" {
			b.WriteString("\n" + statusStyle.Render(a.status))
		}
		return appStyle.Render(b.String())
	}

	b.WriteString(titleStyle.Render("Fetch Bills") + "\n\n")

	if a.archiveV.mode == archiveFilter {
		form := strings.Join([]string{
			"From date", a.archiveV.fromInput.View(),
			"To date", a.archiveV.toInput.View(),
			"Party name", a.archiveV.nameInput.View(),
			"Amount range (" + a.cfg.UI.CurrencySymbol + ")",
			a.archiveV.minInput.View(),
			a.archiveV.maxInput.View(),
		}, "\n")
		b.WriteString(boxStyle.Render(form) + "\n")
		b.WriteString(helpStyle.Render("tab next field · enter search · esc back"))
		if a.status != "" {
			b.WriteString("\n" + statusStyle.Render(a.status))
		}
		return appStyle.Render(b.String())
	}

	if len(a.archiveV.rows) == 0 {
		b.WriteString(subtleStyle.Render("No records match these criteria.") + "\n")
		if a.archiveV.suggestion != "" {
			b.WriteString(subtleStyle.Render("Did you mean "+a.archiveV.suggestion+"?") + "\n")
		}
	}
	for i, r := range a.archiveV.rows {
		cursor := "  "
		if i == a.archiveV.cursor && a.archiveV.mode == archiveBrowse {
			cursor = cursorStyle.Render("> ")
		}
		if i == a.archiveV.cursor && a.archiveV.mode == archiveEdit {
			b.WriteString(fmt.Sprintf("%s %s\n", a.archiveV.partyInput.View(), a.archiveV.amtInput.View()))
			continue
		}
		cat := headerStyle.Render("sale")
		amount := headerStyle.Render(a.cfg.UI.CurrencySymbol + r.Amount.String())
		if r.Category == ledger.CategoryPurchase {
			cat = vendorStyle.Render("purchase")
			amount = vendorStyle.Render(a.cfg.UI.CurrencySymbol + r.Amount.String())
		}
		b.WriteString(fmt.Sprintf("%s%-24s %s  %s · %s bill\n",
			cursor, r.PartyName, subtleStyle.Render(ledger.DateKey(r.Date)), amount, cat))
	}
	if a.archiveV.mode == archiveEdit {
		b.WriteString("\n" + helpStyle.Render("tab switch field · enter save · esc cancel"))
	} else {
		b.WriteString("\n" + helpStyle.Render("↑/↓ move · e edit · x delete · esc filters · q menu"))
	}
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return appStyle.Render(b.String())
}
