package calculator

import (
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCalculateWorkingBalanceProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(params)

	properties.Property("working balance stays within [floor, raw]", prop.ForAll(
		func(raw, extra, vp, totalVP uint64) string {
			r := uint256.NewInt(raw)
			totalRaw := new(uint256.Int).Add(r, uint256.NewInt(extra))
			got := CalculateWorkingBalance(r, totalRaw, uint256.NewInt(vp), uint256.NewInt(totalVP))
			if got.Gt(r) {
				return fmt.Sprintf("working %s above raw %s", got.Dec(), r.Dec())
			}
			if floor := FloorBalance(r); got.Lt(floor) {
				return fmt.Sprintf("working %s below floor %s", got.Dec(), floor.Dec())
			}
			return ""
		},
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.Property("no voting power means floor", prop.ForAll(
		func(raw, totalRaw, totalVP uint64) bool {
			r := uint256.NewInt(raw)
			got := CalculateWorkingBalance(r, uint256.NewInt(totalRaw), new(uint256.Int), uint256.NewInt(totalVP))
			return got.Eq(FloorBalance(r))
		},
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.Property("more voting power never lowers the working balance", prop.ForAll(
		func(raw, totalRaw, vp, more, totalVP uint64) bool {
			r, tr, tv := uint256.NewInt(raw), uint256.NewInt(totalRaw), uint256.NewInt(totalVP)
			lo := CalculateWorkingBalance(r, tr, uint256.NewInt(vp), tv)
			hi := CalculateWorkingBalance(r, tr, new(uint256.Int).Add(uint256.NewInt(vp), uint256.NewInt(more)), tv)
			return !hi.Lt(lo)
		},
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64Range(0, 1<<62),
		gen.UInt64Range(0, 1<<62),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
