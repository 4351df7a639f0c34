package model

import "github.com/holiman/uint256"

// BoostStatus classifies an account's recorded boost against its fair value.
type BoostStatus string

const (
	StatusEmpty    BoostStatus = "EMPTY"
	StatusFloor    BoostStatus = "FLOOR"
	StatusBoosted  BoostStatus = "BOOSTED"
	StatusDecaying BoostStatus = "DECAYING" // recorded > fair, lock still active
	StatusKickable BoostStatus = "KICKABLE" // recorded > fair, lock expired
)

// Assessment is the strategy engine's view of a single position.
type Assessment struct {
	Position    *Position
	Fair        *uint256.Int
	Floor       *uint256.Int
	VotingPower *uint256.Int
	Excess      *uint256.Int // recorded - fair, zero when not stale
	Status      BoostStatus
}
