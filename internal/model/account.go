package model

import (
	"strings"

	"github.com/holiman/uint256"
)

// Address identifies a depositor. Addresses are compared case-insensitively.
type Address string

// NormalizeAddress trims and lowercases a raw address string.
func NormalizeAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

func (a Address) String() string { return string(a) }

// Position is one account's stake in the gauge.
type Position struct {
	Owner          Address
	RawBalance     *uint256.Int
	WorkingBalance *uint256.Int
	LastCheckpoint uint64
}

// NewPosition returns an empty position for owner.
func NewPosition(owner Address) *Position {
	return &Position{
		Owner:          owner,
		RawBalance:     new(uint256.Int),
		WorkingBalance: new(uint256.Int),
	}
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	return &Position{
		Owner:          p.Owner,
		RawBalance:     p.RawBalance.Clone(),
		WorkingBalance: p.WorkingBalance.Clone(),
		LastCheckpoint: p.LastCheckpoint,
	}
}

// Totals are the gauge-wide aggregates of all positions.
type Totals struct {
	RawSupply     *uint256.Int
	WorkingSupply *uint256.Int
}

// NewTotals returns zeroed totals.
func NewTotals() Totals {
	return Totals{RawSupply: new(uint256.Int), WorkingSupply: new(uint256.Int)}
}

// Clone returns a deep copy of the totals.
func (t Totals) Clone() Totals {
	return Totals{RawSupply: t.RawSupply.Clone(), WorkingSupply: t.WorkingSupply.Clone()}
}
