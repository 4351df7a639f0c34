package notifier

import (
	"fmt"
	"strings"
	"time"

	"GaugeKeeper/internal/model"
	"GaugeKeeper/internal/recorder"
)

const stamp = "2006-01-02 15:04"

func unix(t uint64) string {
	return time.Unix(int64(t), 0).UTC().Format(stamp)
}

// FormatKick formats a committed kick for Telegram.
func FormatKick(evt *model.Event) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🦶 <b>Kick</b> | %s\n\n", unix(evt.Time)))
	b.WriteString(fmt.Sprintf("Account: <code>%s</code>\n", evt.Account))
	b.WriteString(fmt.Sprintf("Caller: <code>%s</code>\n", evt.Caller))
	b.WriteString(fmt.Sprintf("Working: %s → %s\n", evt.WorkingBefore.Dec(), evt.WorkingAfter.Dec()))
	b.WriteString(fmt.Sprintf("Working supply: %s\n", evt.WorkingSupply.Dec()))
	return b.String()
}

// FormatSweepReport summarises one keeper sweep and the kicks it made.
func FormatSweepReport(r *recorder.SweepReport, kicks []*model.Event) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧹 <b>Sweep</b> | %s\n\n", unix(r.Time)))
	b.WriteString(fmt.Sprintf("Scanned: %d | Decaying: %d\n", r.Scanned, r.Decaying))
	b.WriteString(fmt.Sprintf("Kicked: %d | Failed: %d\n", r.Kicked, r.Failed))
	for _, k := range kicks {
		b.WriteString(fmt.Sprintf("  • <code>%s</code> %s → %s\n", k.Account, k.WorkingBefore.Dec(), k.WorkingAfter.Dec()))
	}
	b.WriteString(fmt.Sprintf("Working supply: %s\n", r.WorkingSupply))
	return b.String()
}

// FormatSupplyStatus formats the gauge totals for display.
func FormatSupplyStatus(totals model.Totals, accounts int, t uint64) string {
	var b strings.Builder
	b.WriteString("📦 <b>Gauge supply</b>\n\n")
	b.WriteString(fmt.Sprintf("Accounts: %d\n", accounts))
	b.WriteString(fmt.Sprintf("Raw supply: %s\n", totals.RawSupply.Dec()))
	b.WriteString(fmt.Sprintf("Working supply: %s\n", totals.WorkingSupply.Dec()))
	b.WriteString(fmt.Sprintf("As of: %s\n", unix(t)))
	return b.String()
}

// FormatAccount formats one account's assessment.
func FormatAccount(a model.Assessment) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👤 <b>%s</b>\n\n", a.Position.Owner))
	b.WriteString(fmt.Sprintf("Status: %s\n", a.Status))
	b.WriteString(fmt.Sprintf("Raw: %s\n", a.Position.RawBalance.Dec()))
	b.WriteString(fmt.Sprintf("Working: %s (fair %s, floor %s)\n",
		a.Position.WorkingBalance.Dec(), a.Fair.Dec(), a.Floor.Dec()))
	b.WriteString(fmt.Sprintf("Voting power: %s\n", a.VotingPower.Dec()))
	if !a.Excess.IsZero() {
		b.WriteString(fmt.Sprintf("Excess: %s\n", a.Excess.Dec()))
	}
	if a.Position.LastCheckpoint != 0 {
		b.WriteString(fmt.Sprintf("Last checkpoint: %s\n", unix(a.Position.LastCheckpoint)))
	}
	return b.String()
}
