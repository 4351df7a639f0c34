package exchange

import (
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var decimals = [nCoins]uint8{18, 6}

func pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

func seededPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(decimals, 200, 4_000_000, 5_000_000_000)
	require.NoError(t, err)
	amounts := [nCoins]*uint256.Int{
		new(uint256.Int).Mul(uint256.NewInt(1_000_000), pow10(decimals[0])),
		new(uint256.Int).Mul(uint256.NewInt(1_000_000), pow10(decimals[1])),
	}
	minted, err := p.AddLiquidity(amounts)
	require.NoError(t, err)
	require.Equal(t, new(uint256.Int).Mul(uint256.NewInt(2_000_000), pow10(18)).Dec(), minted.Dec())
	return p
}

func TestQuoteMatchesExecution(t *testing.T) {
	for _, pair := range [][2]int{{0, 1}, {1, 0}} {
		sending, receiving := pair[0], pair[1]
		t.Run(fmt.Sprintf("%d->%d", sending, receiving), func(t *testing.T) {
			p := seededPool(t)
			amount := pow10(decimals[sending])

			quoted, err := p.GetDy(sending, receiving, amount)
			require.NoError(t, err)
			minDy := new(uint256.Int).Sub(quoted, uint256.NewInt(1))

			received, err := p.Exchange(sending, receiving, amount, minDy)
			require.NoError(t, err)
			require.True(t, within1(received, quoted), "quoted %s received %s", quoted.Dec(), received.Dec())

			// one unit in, slightly less than one unit out after the 0.04% fee
			unit := pow10(decimals[receiving])
			require.True(t, received.Lt(unit))
			lower := new(uint256.Int).Mul(unit, uint256.NewInt(9990))
			lower.Div(lower, uint256.NewInt(10000))
			require.True(t, received.Gt(lower))

			require.False(t, p.AdminBalances()[receiving].IsZero())
		})
	}
}

func TestExchange_Slippage(t *testing.T) {
	p := seededPool(t)
	amount := pow10(decimals[0])
	quoted, err := p.GetDy(0, 1, amount)
	require.NoError(t, err)
	before := p.Balances()

	_, err = p.Exchange(0, 1, amount, new(uint256.Int).Add(quoted, uint256.NewInt(10)))
	require.ErrorIs(t, err, ErrSlippage)
	require.Equal(t, before, p.Balances())
}

func TestExchange_UpdatesBalances(t *testing.T) {
	p := seededPool(t)
	before := p.Balances()
	amount := new(uint256.Int).Mul(uint256.NewInt(1000), pow10(decimals[1]))

	received, err := p.Exchange(1, 0, amount, new(uint256.Int))
	require.NoError(t, err)

	after := p.Balances()
	require.Equal(t, new(uint256.Int).Add(before[1], amount).Dec(), after[1].Dec())
	paid := new(uint256.Int).Sub(before[0], after[0])
	require.Equal(t, new(uint256.Int).Add(received, p.AdminBalances()[0]).Dec(), paid.Dec())
}

func TestInvalidPairsAndEmptyPool(t *testing.T) {
	p, err := NewPool(decimals, 100, 0, 0)
	require.NoError(t, err)
	one := uint256.NewInt(1)

	_, err = p.GetDy(0, 0, one)
	require.ErrorIs(t, err, ErrInvalidCoin)
	_, err = p.Exchange(0, 2, one, one)
	require.ErrorIs(t, err, ErrInvalidCoin)
	_, err = p.GetDy(0, 1, one)
	require.ErrorIs(t, err, ErrEmptyPool)
	_, err = p.AddLiquidity([nCoins]*uint256.Int{one, new(uint256.Int)})
	require.ErrorIs(t, err, ErrEmptyPool)
}

func TestAddLiquidity_Proportional(t *testing.T) {
	p := seededPool(t)
	supply := p.TotalSupply()
	minted, err := p.AddLiquidity([nCoins]*uint256.Int{
		new(uint256.Int).Mul(uint256.NewInt(1_000_000), pow10(decimals[0])),
		new(uint256.Int).Mul(uint256.NewInt(1_000_000), pow10(decimals[1])),
	})
	require.NoError(t, err)
	require.Equal(t, supply.Dec(), minted.Dec())
}

func TestNewPool_RejectsBadParameters(t *testing.T) {
	tests := []struct {
		name     string
		decimals [nCoins]uint8
		a, fee   uint64
		adminFee uint64
		err      error
	}{
		{"decimals above 36", [nCoins]uint8{18, 37}, 100, 0, 0, ErrInvalidDecimals},
		{"max decimals", [nCoins]uint8{255, 6}, 100, 0, 0, ErrInvalidDecimals},
		{"zero amplification", decimals, 0, 0, 0, ErrInvalidParameter},
		{"fee above denominator", decimals, 100, 10_000_000_001, 0, ErrInvalidParameter},
		{"admin fee above denominator", decimals, 100, 0, 10_000_000_001, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPool(tt.decimals, tt.a, tt.fee, tt.adminFee)
			require.ErrorIs(t, err, tt.err)
		})
	}

	p, err := NewPool([nCoins]uint8{36, 0}, 100, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "1", p.rates[0].Dec())
	require.Equal(t, pow10(36).Dec(), p.rates[1].Dec())
}
