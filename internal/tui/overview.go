package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

const barWidth = 28

// renderBars draws one horizontal bar per weekday, sales and purchases side
// by side, scaled against the largest value on screen.
func renderBars(stats ledger.WeekStats) string {
	maxV := decimal.Zero
	for i := range ledger.Weekdays {
		if stats.Sales[i].GreaterThan(maxV) {
			maxV = stats.Sales[i]
		}
		if stats.Purchases[i].GreaterThan(maxV) {
			maxV = stats.Purchases[i]
		}
	}
	if !maxV.IsPositive() {
		return subtleStyle.Render("(no bills yet)")
	}

	bar := func(v decimal.Decimal) int {
		w := int(v.Div(maxV).Mul(decimal.NewFromInt(barWidth)).IntPart())
		if w < 1 && v.IsPositive() {
			w = 1
		}
		return w
	}

	var b strings.Builder
	for i, day := range ledger.Weekdays {
		sale := stats.Sales[i]
		purchase := stats.Purchases[i]
		b.WriteString(fmt.Sprintf("%-4s %s %s\n", day,
			saleBarStyle.Render(strings.Repeat("█", bar(sale))),
			subtleStyle.Render(sale.String())))
		b.WriteString(fmt.Sprintf("     %s %s\n",
			purchaseBarStyle.Render(strings.Repeat("█", bar(purchase))),
			subtleStyle.Render(purchase.String())))
	}
	return b.String()
}

func (a *App) viewOverview() string {
	records := a.store.List()
	stats := ledger.WeeklyStats(records)
	cur := a.cfg.UI.CurrencySymbol

	var b strings.Builder
	b.WriteString(titleStyle.Render("Business Overview") + "\n\n")

	totals := fmt.Sprintf("%s %s%s   %s %s%s",
		headerStyle.Render("Total Sales"), cur, stats.TotalSales(),
		vendorStyle.Render("Total Purchases"), cur, stats.TotalPurchases())
	b.WriteString(boxStyle.Render(totals) + "\n\n")

	b.WriteString(subtleStyle.Render("Weekly activity (Mon–Sun)") + "\n")
	b.WriteString(renderBars(stats) + "\n")

	b.WriteString(subtleStyle.Render(fmt.Sprintf("%d finalized of %d records",
		ledger.FinalCount(records), len(records))) + "\n")
	b.WriteString(helpStyle.Render("esc back"))
	return appStyle.Render(b.String())
}
