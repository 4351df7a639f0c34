package strategy

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"GaugeKeeper/internal/calculator"
	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/model"
)

// Evaluate classifies a position against the working balance it would get if
// recomputed now (fair) and its current voting power (vp).
func Evaluate(pos *model.Position, fair, vp *uint256.Int) model.Assessment {
	a := model.Assessment{
		Position:    pos,
		Fair:        fair.Clone(),
		Floor:       calculator.FloorBalance(pos.RawBalance),
		VotingPower: vp.Clone(),
		Excess:      new(uint256.Int),
	}

	switch {
	case pos.RawBalance.IsZero():
		a.Status = model.StatusEmpty
	case pos.WorkingBalance.Gt(fair):
		a.Excess.Sub(pos.WorkingBalance, fair)
		if vp.IsZero() {
			a.Status = model.StatusKickable
		} else {
			a.Status = model.StatusDecaying
		}
	case pos.WorkingBalance.Eq(a.Floor):
		a.Status = model.StatusFloor
	default:
		a.Status = model.StatusBoosted
	}
	return a
}

// Assess evaluates every account of the ledger at time t.
func Assess(l *gauge.Ledger, t uint64) ([]model.Assessment, error) {
	accounts := l.Accounts()
	out := make([]model.Assessment, 0, len(accounts))
	for _, addr := range accounts {
		a, err := AssessAccount(l, addr, t)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// AssessAccount evaluates a single account at time t. Unknown accounts are
// reported as empty.
func AssessAccount(l *gauge.Ledger, addr model.Address, t uint64) (model.Assessment, error) {
	pos, ok := l.Position(addr)
	if !ok {
		pos = model.NewPosition(addr)
	}
	fair, vp, err := l.FairWorkingBalance(addr, t)
	if err != nil {
		return model.Assessment{}, errors.Wrapf(err, "assess %s", addr)
	}
	return Evaluate(pos, fair, vp), nil
}

// Candidates returns the kickable assessments, largest excess first so the
// positions diluting the pool the most are corrected first.
func Candidates(as []model.Assessment) []model.Assessment {
	var out []model.Assessment
	for _, a := range as {
		if a.Status == model.StatusKickable {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Excess.Gt(out[j].Excess) })
	return out
}
