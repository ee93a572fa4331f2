// Package tui is the presentation shell. It routes between the daily log,
// edit, archive, and overview views; the business rules live below it in the
// workflow and ledger packages.
package tui

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/merchanthub/merchantbook/internal/config"
	"github.com/merchanthub/merchantbook/internal/ledger"
	"github.com/merchanthub/merchantbook/internal/workflow"
)

type view int

const (
	viewMenu view = iota
	viewDailySale
	viewDailyPurchase
	viewEdit
	viewArchive
	viewOverview
)

var menuEntries = []struct {
	label string
	view  view
}{
	{"Customer Daily Log", viewDailySale},
	{"Vendor Ledger", viewDailyPurchase},
	{"Edit Bills", viewEdit},
	{"Fetch History", viewArchive},
	{"Business Overview", viewOverview},
}

// App ties together views.
type App struct {
	ctx   context.Context
	log   zerolog.Logger
	cfg   config.Config
	store *ledger.Store

	sales     *workflow.DailyLog
	purchases *workflow.DailyLog
	archive   *workflow.Archive

	active     view
	menuCursor int
	status     string
	width      int
	height     int

	daily    dailyState
	edit     editState
	archiveV archiveState

	clock func() time.Time
}

// New builds the app model. clock is injectable for tests; nil means time.Now.
func New(ctx context.Context, cfg config.Config, store *ledger.Store,
	sales, purchases *workflow.DailyLog, archive *workflow.Archive,
	log zerolog.Logger, clock func() time.Time) *App {
	if clock == nil {
		clock = time.Now
	}
	a := &App{
		ctx:       ctx,
		log:       log,
		cfg:       cfg,
		store:     store,
		sales:     sales,
		purchases: purchases,
		archive:   archive,
		clock:     clock,
	}
	a.daily = newDailyState()
	a.edit = newEditState(clock())
	a.archiveV = newArchiveState()
	return a
}

func (a *App) Init() tea.Cmd { return textinput.Blink }

// currentDaily maps the active view to its workflow instance. One workflow
// type, two instances; the category is the only difference.
func (a *App) currentDaily() *workflow.DailyLog {
	if a.active == viewDailyPurchase {
		return a.purchases
	}
	return a.sales
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case extractDoneMsg:
		return a.onExtractDone(m)

	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		switch a.active {
		case viewMenu:
			return a.updateMenu(m)
		case viewDailySale, viewDailyPurchase:
			return a.updateDaily(m)
		case viewEdit:
			return a.updateEdit(m)
		case viewArchive:
			return a.updateArchive(m)
		case viewOverview:
			return a.updateOverview(m)
		}
	}
	return a, nil
}

func (a *App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "up", "k":
		if a.menuCursor > 0 {
			a.menuCursor--
		}
	case "down", "j":
		if a.menuCursor < len(menuEntries)-1 {
			a.menuCursor++
		}
	case "enter":
		a.status = ""
		a.openView(menuEntries[a.menuCursor].view)
	}
	return a, nil
}

func (a *App) openView(v view) {
	a.active = v
	switch v {
	case viewDailySale, viewDailyPurchase:
		a.daily = newDailyState()
	case viewEdit:
		a.edit = newEditState(a.clock())
		a.refreshEdit()
	case viewArchive:
		// the gate re-arms every time the view is entered
		a.archive.Lock()
		a.archiveV = newArchiveState()
	}
}

func (a *App) updateOverview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.active = viewMenu
	}
	return a, nil
}

// --- messages ---

type extractDoneMsg struct {
	draft ledger.Draft
	err   error
}

// submitImage reads the captured image off disk and runs it through the
// extraction pipeline. The workflow rejects duplicate submissions while one
// is outstanding.
func (a *App) submitImage(w *workflow.DailyLog, path string) tea.Cmd {
	now := a.clock()
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return extractDoneMsg{err: fmt.Errorf("read image: %w", err)}
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
		draft, err := w.Submit(a.ctx, data, mimeType, now)
		if err != nil {
			return extractDoneMsg{err: err}
		}
		return extractDoneMsg{draft: draft}
	}
}

func (a *App) View() string {
	switch a.active {
	case viewDailySale, viewDailyPurchase:
		return a.viewDaily()
	case viewEdit:
		return a.viewEdit()
	case viewArchive:
		return a.viewArchive()
	case viewOverview:
		return a.viewOverview()
	default:
		return a.viewMenu()
	}
}

func (a *App) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Merchant Hub") + "\n\n")
	records := a.store.List()
	now := a.clock()
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s  ·  %d records  ·  %d staging today",
		ledger.DateKey(now), len(records),
		ledger.PendingCount(records, ledger.CategorySale, now)+ledger.PendingCount(records, ledger.CategoryPurchase, now))) + "\n\n")
	for i, e := range menuEntries {
		cursor := "  "
		label := e.label
		if i == a.menuCursor {
			cursor = cursorStyle.Render("> ")
			label = selectedStyle.Render(label)
		}
		b.WriteString(cursor + label + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ move · enter open · q quit"))
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return appStyle.Render(b.String())
}
