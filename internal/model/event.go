package model

import "github.com/holiman/uint256"

// EventKind indicates which operation produced an event.
type EventKind string

const (
	EventDeposit  EventKind = "DEPOSIT"
	EventWithdraw EventKind = "WITHDRAW"
	EventPoke     EventKind = "POKE"
	EventKick     EventKind = "KICK"
)

// Event describes one committed ledger mutation.
type Event struct {
	Kind             EventKind
	Account          Address
	Caller           Address
	Time             uint64
	RawBefore        *uint256.Int
	RawAfter         *uint256.Int
	WorkingBefore    *uint256.Int
	WorkingAfter     *uint256.Int
	WorkingSupply    *uint256.Int
	RawSupply        *uint256.Int
	VotingPower      *uint256.Int
	TotalVotingPower *uint256.Int
}
