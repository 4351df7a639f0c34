package gauge

import (
	"github.com/pkg/errors"

	"GaugeKeeper/internal/model"
)

// Kick lets any caller resync target's working balance once target's lock
// has fully expired. It fails with ErrKickNotAllowed while target still has
// voting power, and with ErrKickNotNeeded when the recorded working balance
// is already at its fair value. Nothing changes on failure.
func (l *Ledger) Kick(target, caller model.Address, t uint64) (*model.Event, error) {
	target = model.NormalizeAddress(target.String())
	caller = model.NormalizeAddress(caller.String())

	l.mu.Lock()
	defer l.mu.Unlock()

	vp, err := l.oracle.VotingPowerOf(target, t)
	if err != nil {
		return nil, errors.Wrap(err, "read voting power")
	}
	if !vp.IsZero() {
		return nil, ErrKickNotAllowed
	}

	pos := l.position(target)
	fair, _, err := l.fair(pos, t)
	if err != nil {
		return nil, err
	}
	if !pos.WorkingBalance.Gt(fair) {
		return nil, ErrKickNotNeeded
	}

	raw := pos.RawBalance.Clone()
	supply := l.totals.RawSupply.Clone()
	return l.checkpoint(model.EventKick, pos, caller, raw, supply, vp, t)
}
