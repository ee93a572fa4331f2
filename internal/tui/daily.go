package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

// dailyMode is the pipeline-local sub-state of the capture flow. It is not
// part of the bill state machine.
type dailyMode int

const (
	dailyBrowse  dailyMode = iota
	dailyCapture           // entering the image path
	dailyWaiting           // extraction outstanding, capture disabled
	dailyDraft             // editing the draft before confirm
)

type dailyState struct {
	mode   dailyMode
	cursor int

	pathInput  textinput.Model
	partyInput textinput.Model
	amtInput   textinput.Model
	dateInput  textinput.Model
	field      int // focused draft field
}

func newDailyState() dailyState {
	path := textinput.New()
	path.Placeholder = "path to bill photo"
	path.CharLimit = 200

	party := textinput.New()
	party.Placeholder = "party name"
	party.CharLimit = 80

	amt := textinput.New()
	amt.Placeholder = "0"
	amt.CharLimit = 20

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10

	return dailyState{pathInput: path, partyInput: party, amtInput: amt, dateInput: date}
}

func (a *App) updateDaily(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := a.currentDaily()
	now := a.clock()

	switch a.daily.mode {
	case dailyCapture:
		switch msg.String() {
		case "esc":
			a.daily.mode = dailyBrowse
			a.daily.pathInput.Blur()
			return a, nil
		case "enter":
			path := strings.TrimSpace(a.daily.pathInput.Value())
			if path == "" {
				return a, nil
			}
			a.daily.mode = dailyWaiting
			a.daily.pathInput.Blur()
			a.status = "analyzing bill..."
			return a, a.submitImage(w, path)
		}
		var cmd tea.Cmd
		a.daily.pathInput, cmd = a.daily.pathInput.Update(msg)
		return a, cmd

	case dailyWaiting:
		// no cancellation: wait for the adapter to finish or time out
		return a, nil

	case dailyDraft:
		return a.updateDailyDraft(msg)
	}

	// browse
	records := w.Today(now)
	// the set can shrink between keypresses (date rollover mid-session)
	if a.daily.cursor >= len(records) {
		a.daily.cursor = 0
	}
	switch msg.String() {
	case "esc", "q":
		a.active = viewMenu
	case "up", "k":
		if a.daily.cursor > 0 {
			a.daily.cursor--
		}
	case "down", "j":
		if a.daily.cursor < len(records)-1 {
			a.daily.cursor++
		}
	case "c":
		a.daily.mode = dailyCapture
		a.daily.pathInput.SetValue("")
		a.daily.pathInput.Focus()
		a.status = ""
	case "m":
		w.BeginManual(now)
		a.enterDraftEditor(ledger.Draft{Date: ledger.Day(now)})
	case "f":
		if len(records) > 0 {
			rec := records[a.daily.cursor]
			if err := w.Finalize(a.ctx, rec.ID); err != nil {
				a.status = "warning: " + err.Error()
			} else {
				a.status = fmt.Sprintf("finalized %s", rec.PartyName)
			}
		}
	case "F":
		n := w.FinalizeAll(a.ctx, now)
		a.status = fmt.Sprintf("finalized %d bills", n)
	case "x":
		if len(records) > 0 {
			rec := records[a.daily.cursor]
			if err := w.Delete(a.ctx, rec.ID); err != nil {
				a.status = "warning: " + err.Error()
			} else {
				a.status = "deleted"
				if a.daily.cursor > 0 {
					a.daily.cursor--
				}
			}
		}
	}
	return a, nil
}

func (a *App) onExtractDone(m extractDoneMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		// draft aborted, store untouched; the user may retry or go manual
		a.daily.mode = dailyBrowse
		a.status = "AI could not read the bill: " + m.err.Error() + " (c retry, m manual)"
		return a, nil
	}
	a.status = "verify the extracted fields"
	a.enterDraftEditor(m.draft)
	return a, nil
}

func (a *App) enterDraftEditor(d ledger.Draft) {
	a.daily.mode = dailyDraft
	a.daily.field = 0
	a.daily.partyInput.SetValue(d.PartyName)
	if d.Amount.IsZero() {
		a.daily.amtInput.SetValue("")
	} else {
		a.daily.amtInput.SetValue(d.Amount.String())
	}
	if d.Date.IsZero() {
		a.daily.dateInput.SetValue("")
	} else {
		a.daily.dateInput.SetValue(ledger.DateKey(d.Date))
	}
	a.daily.partyInput.Focus()
	a.daily.amtInput.Blur()
	a.daily.dateInput.Blur()
}

func (a *App) draftInputs() []*textinput.Model {
	return []*textinput.Model{&a.daily.partyInput, &a.daily.amtInput, &a.daily.dateInput}
}

func (a *App) updateDailyDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := a.currentDaily()
	inputs := a.draftInputs()

	switch msg.String() {
	case "esc":
		w.Discard()
		a.daily.mode = dailyBrowse
		a.status = "draft discarded"
		return a, nil
	case "tab", "down":
		a.daily.field = (a.daily.field + 1) % len(inputs)
		a.focusDraftField()
		return a, nil
	case "shift+tab", "up":
		a.daily.field = (a.daily.field + len(inputs) - 1) % len(inputs)
		a.focusDraftField()
		return a, nil
	case "enter":
		draft, err := a.readDraftInputs()
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		w.SetDraft(draft)
		rec, err := w.Confirm(a.ctx, a.clock())
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.daily.mode = dailyBrowse
		a.status = fmt.Sprintf("saved %s %s%s (staging)", rec.PartyName, a.cfg.UI.CurrencySymbol, rec.Amount)
		return a, nil
	}

	var cmd tea.Cmd
	*inputs[a.daily.field], cmd = inputs[a.daily.field].Update(msg)
	return a, cmd
}

func (a *App) focusDraftField() {
	for i, in := range a.draftInputs() {
		if i == a.daily.field {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// readDraftInputs turns the edit fields back into a draft. Parse problems
// are reported like validation failures: the user stays on the form.
func (a *App) readDraftInputs() (ledger.Draft, error) {
	d := ledger.Draft{PartyName: strings.TrimSpace(a.daily.partyInput.Value())}

	amtStr := strings.TrimSpace(a.daily.amtInput.Value())
	if amtStr == "" {
		amtStr = "0"
	}
	amt, err := decimal.NewFromString(amtStr)
	if err != nil {
		return ledger.Draft{}, fmt.Errorf("invalid amount: %s", amtStr)
	}
	d.Amount = amt

	if ds := strings.TrimSpace(a.daily.dateInput.Value()); ds != "" {
		day, err := parseDay(ds)
		if err != nil {
			return ledger.Draft{}, fmt.Errorf("invalid date: %s", ds)
		}
		d.Date = day
	}
	if cur, ok := a.currentDaily().Draft(); ok {
		d.Items = cur.Items
		d.ImageRef = cur.ImageRef
	}
	return d, nil
}

func (a *App) viewDaily() string {
	w := a.currentDaily()
	now := a.clock()
	records := w.Today(now)
	isVendor := a.active == viewDailyPurchase

	var b strings.Builder
	header := headerStyle
	title := "Customer Daily Log"
	if isVendor {
		header = vendorStyle
		title = "Vendor Ledger"
	}
	b.WriteString(header.Render(title) + "\n")

	pending := w.PendingCount(now)
	statusLine := "All finalized"
	if pending > 0 {
		statusLine = fmt.Sprintf("%d bills in staging", pending)
	}
	b.WriteString(subtleStyle.Render(statusLine) + "\n\n")

	b.WriteString(boxStyle.Render(fmt.Sprintf("SESSION SUMMARY: %s\nTotal recorded: %s",
		ledger.DateKey(now),
		amountStyle.Render(a.cfg.UI.CurrencySymbol+w.SessionTotal(now).String()))) + "\n\n")

	if len(records) == 0 {
		b.WriteString(subtleStyle.Render("No bills yet today. Press c to scan a hard-copy bill.") + "\n")
	}
	for i, r := range records {
		cursor := "  "
		if i == a.daily.cursor && a.daily.mode == dailyBrowse {
			cursor = cursorStyle.Render("> ")
		}
		state := finalStyle.Render("FINAL")
		if r.State == ledger.StateStaging {
			state = stagingStyle.Render("PENDING")
		}
		items := ""
		if n := len(r.Items); n > 0 {
			items = subtleStyle.Render(fmt.Sprintf(" (%d items)", n))
		}
		b.WriteString(fmt.Sprintf("%s%s  %s%s  %s %s\n",
			cursor,
			partyStyle.Render(r.PartyName),
			amountStyle.Render(a.cfg.UI.CurrencySymbol+r.Amount.String()),
			items,
			subtleStyle.Render(r.CreatedAt.Format("15:04")),
			state))
	}

	switch a.daily.mode {
	case dailyCapture:
		b.WriteString("\n" + boxStyle.Render("Scan bill hard copy\n"+a.daily.pathInput.View()) + "\n")
		b.WriteString(helpStyle.Render("enter submit · esc cancel"))
	case dailyWaiting:
		b.WriteString("\n" + stagingStyle.Render("ANALYZING...") + "\n")
	case dailyDraft:
		form := fmt.Sprintf("Verify party name\n%s\nTotal amount (%s)\n%s\nDate\n%s",
			a.daily.partyInput.View(), a.cfg.UI.CurrencySymbol,
			a.daily.amtInput.View(), a.daily.dateInput.View())
		b.WriteString("\n" + boxStyle.Render(form) + "\n")
		b.WriteString(helpStyle.Render("tab next field · enter save · esc discard"))
	default:
		b.WriteString("\n" + helpStyle.Render("c scan · m manual · f finalize · F finalize all · x delete · esc back"))
	}

	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return appStyle.Render(b.String())
}
