package escrow

import (
	"sync"

	"github.com/holiman/uint256"

	"GaugeKeeper/internal/model"
)

// Delegation adjusts an account's voting power for boost delegation.
type Delegation interface {
	AdjustedBalanceOf(addr model.Address, t uint64) (*uint256.Int, error)
}

// BoostProxy forwards voting-power reads to an escrow, replacing per-account
// power with the delegation's adjusted balance when one is installed.
type BoostProxy struct {
	escrow Oracle

	mu         sync.RWMutex
	delegation Delegation
}

// NewBoostProxy wraps escrow. delegation may be nil.
func NewBoostProxy(escrow Oracle, delegation Delegation) *BoostProxy {
	return &BoostProxy{escrow: escrow, delegation: delegation}
}

func (p *BoostProxy) Name() string { return "proxy(" + p.escrow.Name() + ")" }

// SetDelegation installs or, with nil, removes the delegation.
func (p *BoostProxy) SetDelegation(d Delegation) {
	p.mu.Lock()
	p.delegation = d
	p.mu.Unlock()
}

// Delegation returns the installed delegation, nil when reads pass through.
func (p *BoostProxy) Delegation() Delegation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.delegation
}

func (p *BoostProxy) VotingPowerOf(addr model.Address, t uint64) (*uint256.Int, error) {
	if d := p.Delegation(); d != nil {
		return d.AdjustedBalanceOf(addr, t)
	}
	return p.escrow.VotingPowerOf(addr, t)
}

func (p *BoostProxy) TotalVotingPower(t uint64) (*uint256.Int, error) {
	return p.escrow.TotalVotingPower(t)
}
