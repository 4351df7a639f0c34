package calculator

import "github.com/holiman/uint256"

const (
	// BaseRatio is the percentage of a deposit that counts as working balance
	// with no voting power at all.
	BaseRatio = 40
	// RatioDenominator is the denominator of BaseRatio.
	RatioDenominator = 100
)

var (
	baseRatio  = uint256.NewInt(BaseRatio)
	bonusRatio = uint256.NewInt(RatioDenominator - BaseRatio)
	ratioDenom = uint256.NewInt(RatioDenominator)
)

// FloorBalance returns the unboosted working balance raw*40/100, rounded down.
func FloorBalance(raw *uint256.Int) *uint256.Int {
	// raw*40 can overflow for raw near 2^256, so divide first and add back the
	// remainder's share.
	q, r := new(uint256.Int).DivMod(raw, ratioDenom, new(uint256.Int))
	q.Mul(q, baseRatio)
	r.Mul(r, baseRatio)
	r.Div(r, ratioDenom)
	return q.Add(q, r)
}

// CalculateWorkingBalance computes the boosted weight of a deposit:
//
//	min(raw, raw*40/100 + totalRaw*votingPower/totalVotingPower*60/100)
//
// Every step rounds down. A zero totalVotingPower yields no bonus. A bonus
// that does not fit in 256 bits is above raw, so the result is raw.
func CalculateWorkingBalance(raw, totalRaw, votingPower, totalVotingPower *uint256.Int) *uint256.Int {
	working := FloorBalance(raw)
	if totalVotingPower.IsZero() {
		return working
	}

	bonus, overflow := new(uint256.Int).MulDivOverflow(totalRaw, votingPower, totalVotingPower)
	if overflow {
		return raw.Clone()
	}
	// bonus*60/100 never exceeds bonus, so the full-width mul-div cannot overflow.
	bonus.MulDivOverflow(bonus, bonusRatio, ratioDenom)

	if _, overflow := working.AddOverflow(working, bonus); overflow || working.Gt(raw) {
		return raw.Clone()
	}
	return working
}
