package gauge

import (
	"math/big"
	"sort"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"GaugeKeeper/internal/calculator"
	"GaugeKeeper/internal/escrow"
	"GaugeKeeper/internal/model"
)

// Ledger holds every position of a single gauge and the aggregate totals.
// Owners are normalized on every call, so "Alice" and "alice" share a position.
// All mutations are serialized by one mutex so that WorkingSupply always
// equals the sum of recorded working balances.
type Ledger struct {
	mu        sync.Mutex
	oracle    escrow.Oracle
	positions map[model.Address]*model.Position
	totals    model.Totals
}

// NewLedger creates an empty ledger reading voting power from oracle.
func NewLedger(oracle escrow.Oracle) *Ledger {
	return &Ledger{
		oracle:    oracle,
		positions: make(map[model.Address]*model.Position),
		totals:    model.NewTotals(),
	}
}

// Deposit adds amount to owner's raw balance and resyncs its boost.
func (l *Ledger) Deposit(owner model.Address, amount *uint256.Int, t uint64) (*model.Event, error) {
	return l.ApplyDelta(owner, amount.ToBig(), t)
}

// Withdraw removes amount from owner's raw balance and resyncs its boost.
func (l *Ledger) Withdraw(owner model.Address, amount *uint256.Int, t uint64) (*model.Event, error) {
	return l.ApplyDelta(owner, new(big.Int).Neg(amount.ToBig()), t)
}

// Poke recomputes owner's working balance without moving funds.
func (l *Ledger) Poke(owner model.Address, t uint64) (*model.Event, error) {
	return l.ApplyDelta(owner, new(big.Int), t)
}

// ApplyDelta changes owner's raw balance by the signed delta and recomputes
// its working balance from the voting power at t. A zero delta is a poke.
// On error nothing is changed.
func (l *Ledger) ApplyDelta(owner model.Address, delta *big.Int, t uint64) (*model.Event, error) {
	owner = model.NormalizeAddress(owner.String())
	if delta == nil {
		return nil, ErrInvalidAmount
	}
	abs, overflow := uint256.FromBig(new(big.Int).Abs(delta))
	if overflow {
		return nil, errors.Wrap(ErrArithmeticOverflow, "delta")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.position(owner)
	raw := new(uint256.Int)
	supply := new(uint256.Int)
	kind := model.EventPoke

	switch delta.Sign() {
	case 1:
		kind = model.EventDeposit
		if _, overflow := raw.AddOverflow(pos.RawBalance, abs); overflow {
			return nil, errors.Wrap(ErrArithmeticOverflow, "raw balance")
		}
		if _, overflow := supply.AddOverflow(l.totals.RawSupply, abs); overflow {
			return nil, errors.Wrap(ErrArithmeticOverflow, "raw supply")
		}
	case -1:
		kind = model.EventWithdraw
		if pos.RawBalance.Lt(abs) {
			return nil, ErrInsufficientBalance
		}
		raw.Sub(pos.RawBalance, abs)
		supply.Sub(l.totals.RawSupply, abs)
	default:
		raw.Set(pos.RawBalance)
		supply.Set(l.totals.RawSupply)
	}

	vp, err := l.oracle.VotingPowerOf(owner, t)
	if err != nil {
		return nil, errors.Wrap(err, "read voting power")
	}
	return l.checkpoint(kind, pos, owner, raw, supply, vp, t)
}

// checkpoint recomputes the working balance of pos for the given raw balance
// and raw supply, then commits position and totals. Must hold l.mu.
func (l *Ledger) checkpoint(kind model.EventKind, pos *model.Position, caller model.Address, raw, supply, vp *uint256.Int, t uint64) (*model.Event, error) {
	totalVP, err := l.oracle.TotalVotingPower(t)
	if err != nil {
		return nil, errors.Wrap(err, "read total voting power")
	}
	working := calculator.CalculateWorkingBalance(raw, supply, vp, totalVP)

	// WorkingSupply >= pos.WorkingBalance always holds, so only the add can overflow.
	workingSupply := new(uint256.Int).Sub(l.totals.WorkingSupply, pos.WorkingBalance)
	if _, overflow := workingSupply.AddOverflow(workingSupply, working); overflow {
		return nil, errors.Wrap(ErrArithmeticOverflow, "working supply")
	}

	evt := &model.Event{
		Kind:             kind,
		Account:          pos.Owner,
		Caller:           caller,
		Time:             t,
		RawBefore:        pos.RawBalance.Clone(),
		RawAfter:         raw.Clone(),
		WorkingBefore:    pos.WorkingBalance.Clone(),
		WorkingAfter:     working.Clone(),
		WorkingSupply:    workingSupply.Clone(),
		RawSupply:        supply.Clone(),
		VotingPower:      vp.Clone(),
		TotalVotingPower: totalVP.Clone(),
	}

	pos.RawBalance = raw
	pos.WorkingBalance = working
	pos.LastCheckpoint = t
	if _, known := l.positions[pos.Owner]; known || !raw.IsZero() {
		l.positions[pos.Owner] = pos
	}
	l.totals = model.Totals{RawSupply: supply, WorkingSupply: workingSupply}
	return evt, nil
}

// position returns a private copy of owner's position, empty when unknown.
// Callers commit it back through checkpoint.
func (l *Ledger) position(owner model.Address) *model.Position {
	if p, ok := l.positions[owner]; ok {
		return p.Clone()
	}
	return model.NewPosition(owner)
}

// FairWorkingBalance returns what owner's working balance would be if it were
// recomputed at t, together with the voting power used.
func (l *Ledger) FairWorkingBalance(owner model.Address, t uint64) (fair, vp *uint256.Int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fair(l.position(model.NormalizeAddress(owner.String())), t)
}

func (l *Ledger) fair(pos *model.Position, t uint64) (fair, vp *uint256.Int, err error) {
	vp, err = l.oracle.VotingPowerOf(pos.Owner, t)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read voting power")
	}
	totalVP, err := l.oracle.TotalVotingPower(t)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read total voting power")
	}
	return calculator.CalculateWorkingBalance(pos.RawBalance, l.totals.RawSupply, vp, totalVP), vp, nil
}

// WorkingBalanceOf returns the recorded working balance of addr.
func (l *Ledger) WorkingBalanceOf(addr model.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[model.NormalizeAddress(addr.String())]; ok {
		return p.WorkingBalance.Clone()
	}
	return new(uint256.Int)
}

// RawBalanceOf returns the deposited balance of addr.
func (l *Ledger) RawBalanceOf(addr model.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[model.NormalizeAddress(addr.String())]; ok {
		return p.RawBalance.Clone()
	}
	return new(uint256.Int)
}

// TotalWorkingSupply returns the sum of all working balances.
func (l *Ledger) TotalWorkingSupply() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals.WorkingSupply.Clone()
}

// TotalRawSupply returns the sum of all raw balances.
func (l *Ledger) TotalRawSupply() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals.RawSupply.Clone()
}

// Totals returns a copy of the gauge totals.
func (l *Ledger) Totals() model.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals.Clone()
}

// Position returns a copy of addr's position.
func (l *Ledger) Position(addr model.Address) (*model.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.positions[model.NormalizeAddress(addr.String())]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Accounts returns every known owner in ascending order.
func (l *Ledger) Accounts() []model.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Address, 0, len(l.positions))
	for a := range l.positions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OracleName reports which voting-power source the ledger reads.
func (l *Ledger) OracleName() string { return l.oracle.Name() }
