package exchange

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrInvalidCoin        = errors.New("invalid coin index")
	ErrSlippage           = errors.New("exchange resulted in fewer coins than expected")
	ErrNoConvergence      = errors.New("invariant did not converge")
	ErrEmptyPool          = errors.New("pool has no liquidity")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrInsufficientOutput = errors.New("output exceeds pool balance")
	ErrNoGrowth           = errors.New("deposit did not increase the invariant")
	ErrInvalidDecimals    = errors.New("coin decimals above 36")
	ErrInvalidParameter   = errors.New("invalid pool parameter")
)

// Pool is a two-coin stableswap pool. Fees are expressed in 1e10 units.
type Pool struct {
	mu            sync.Mutex
	balances      [nCoins]*uint256.Int
	adminBalances [nCoins]*uint256.Int
	rates         [nCoins]*uint256.Int
	totalSupply   *uint256.Int

	A        uint64
	Fee      uint64
	AdminFee uint64
}

const maxDecimals = 36

// NewPool creates an empty pool for coins with the given decimals. a must be
// positive and both fees at most 1e10.
func NewPool(decimals [nCoins]uint8, a, fee, adminFee uint64) (*Pool, error) {
	if a == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "amplification must be positive")
	}
	if fee > feeDenom.Uint64() || adminFee > feeDenom.Uint64() {
		return nil, errors.Wrap(ErrInvalidParameter, "fee above 100%")
	}
	p := &Pool{A: a, Fee: fee, AdminFee: adminFee, totalSupply: new(uint256.Int)}
	for i, d := range decimals {
		if d > maxDecimals {
			return nil, errors.Wrapf(ErrInvalidDecimals, "coin %d has %d", i, d)
		}
		p.balances[i] = new(uint256.Int)
		p.adminBalances[i] = new(uint256.Int)
		// rate = 10^(36-decimals), so rate*balance/1e18 has 18 decimals
		p.rates[i] = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(maxDecimals-d)))
	}
	return p, nil
}

// Balances returns the pool's coin balances.
func (p *Pool) Balances() [nCoins]*uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return [nCoins]*uint256.Int{p.balances[0].Clone(), p.balances[1].Clone()}
}

// AdminBalances returns the accrued admin fees per coin.
func (p *Pool) AdminBalances() [nCoins]*uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return [nCoins]*uint256.Int{p.adminBalances[0].Clone(), p.adminBalances[1].Clone()}
}

// TotalSupply returns the outstanding LP token supply.
func (p *Pool) TotalSupply() *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalSupply.Clone()
}

// AddLiquidity deposits amounts and returns the LP tokens minted. The first
// deposit must supply both coins. No imbalance fee is charged.
func (p *Pool) AddLiquidity(amounts [nCoins]*uint256.Int) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	xp0, err := p.xp(p.balances)
	if err != nil {
		return nil, err
	}
	d0, err := getD(xp0, p.A)
	if err != nil {
		return nil, err
	}

	var next [nCoins]*uint256.Int
	for i := range next {
		if p.totalSupply.IsZero() && amounts[i].IsZero() {
			return nil, ErrEmptyPool
		}
		if next[i], err = add(p.balances[i], amounts[i]); err != nil {
			return nil, err
		}
	}
	xp1, err := p.xp(next)
	if err != nil {
		return nil, err
	}
	d1, err := getD(xp1, p.A)
	if err != nil {
		return nil, err
	}
	if !d1.Gt(d0) {
		return nil, ErrNoGrowth
	}

	minted := d1
	if !p.totalSupply.IsZero() {
		if minted, err = mulDiv(p.totalSupply, new(uint256.Int).Sub(d1, d0), d0); err != nil {
			return nil, err
		}
	}
	supply, err := add(p.totalSupply, minted)
	if err != nil {
		return nil, err
	}

	p.balances = next
	p.totalSupply = supply
	return minted.Clone(), nil
}

// GetDy quotes how much of coin j an exchange of dx of coin i would return.
func (p *Pool) GetDy(i, j int, dx *uint256.Int) (*uint256.Int, error) {
	if err := checkPair(i, j); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	xp, y, err := p.swapTarget(i, j, dx)
	if err != nil {
		return nil, err
	}
	// dy = (xp[j] - y - 1) * PRECISION / rates[j]
	dy := new(uint256.Int).Sub(xp[j], y)
	dy.Sub(dy, one)
	if dy, err = mulDiv(dy, precision, p.rates[j]); err != nil {
		return nil, err
	}
	fee, err := mulDiv(dy, uint256.NewInt(p.Fee), feeDenom)
	if err != nil {
		return nil, err
	}
	return dy.Sub(dy, fee), nil
}

// Exchange swaps dx of coin i for at least minDy of coin j and returns the
// amount received.
func (p *Pool) Exchange(i, j int, dx, minDy *uint256.Int) (*uint256.Int, error) {
	if err := checkPair(i, j); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	xp, y, err := p.swapTarget(i, j, dx)
	if err != nil {
		return nil, err
	}
	dy := new(uint256.Int).Sub(xp[j], y)
	dy.Sub(dy, one)
	dyFee, err := mulDiv(dy, uint256.NewInt(p.Fee), feeDenom)
	if err != nil {
		return nil, err
	}
	// fee is taken before converting back to coin units, so the result can
	// differ from GetDy by one unit
	dy.Sub(dy, dyFee)
	if dy, err = mulDiv(dy, precision, p.rates[j]); err != nil {
		return nil, err
	}
	if dy.Lt(minDy) {
		return nil, ErrSlippage
	}

	adminFee, err := mulDiv(dyFee, uint256.NewInt(p.AdminFee), feeDenom)
	if err != nil {
		return nil, err
	}
	if adminFee, err = mulDiv(adminFee, precision, p.rates[j]); err != nil {
		return nil, err
	}

	out := new(uint256.Int).Add(dy, adminFee)
	if out.Gt(p.balances[j]) {
		return nil, ErrInsufficientOutput
	}
	in, err := add(p.balances[i], dx)
	if err != nil {
		return nil, err
	}

	p.balances[i] = in
	p.balances[j] = new(uint256.Int).Sub(p.balances[j], out)
	p.adminBalances[j] = new(uint256.Int).Add(p.adminBalances[j], adminFee)
	return dy, nil
}

// swapTarget returns the normalized balances and coin j's balance after
// adding dx of coin i. Must hold p.mu.
func (p *Pool) swapTarget(i, j int, dx *uint256.Int) ([nCoins]*uint256.Int, *uint256.Int, error) {
	xp, err := p.xp(p.balances)
	if err != nil {
		return xp, nil, err
	}
	for _, x := range xp {
		if x.IsZero() {
			return xp, nil, ErrEmptyPool
		}
	}
	in, err := mulDiv(dx, p.rates[i], precision)
	if err != nil {
		return xp, nil, err
	}
	x, err := add(xp[i], in)
	if err != nil {
		return xp, nil, err
	}
	y, err := getY(i, j, x, xp, p.A)
	if err != nil {
		return xp, nil, err
	}
	if !xp[j].Gt(y) {
		return xp, nil, ErrInsufficientOutput
	}
	return xp, y, nil
}

func (p *Pool) xp(balances [nCoins]*uint256.Int) ([nCoins]*uint256.Int, error) {
	var out [nCoins]*uint256.Int
	for i := range out {
		v, err := mulDiv(p.rates[i], balances[i], precision)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func checkPair(i, j int) error {
	if i == j || i < 0 || j < 0 || i >= nCoins || j >= nCoins {
		return ErrInvalidCoin
	}
	return nil
}
