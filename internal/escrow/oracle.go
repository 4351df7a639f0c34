package escrow

import (
	"github.com/holiman/uint256"

	"GaugeKeeper/internal/model"
)

//go:generate mockgen -package=escrow -destination=mock_oracle.go GaugeKeeper/internal/escrow Oracle

// Oracle exposes vote-escrow voting power at a point in time (unix seconds).
// Implementations must not cache results across calls with different t.
type Oracle interface {
	VotingPowerOf(addr model.Address, t uint64) (*uint256.Int, error)
	TotalVotingPower(t uint64) (*uint256.Int, error)
	Name() string
}
