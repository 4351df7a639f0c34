package exchange

import (
	"github.com/holiman/uint256"
)

const (
	nCoins    = 2
	maxRounds = 255
)

var (
	precision = uint256.NewInt(1_000_000_000_000_000_000)
	feeDenom  = uint256.NewInt(10_000_000_000)
	one       = uint256.NewInt(1)
	nBig      = uint256.NewInt(nCoins)
)

// mulDiv returns a*b/d rounded down, failing when the result leaves 256 bits.
func mulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrEmptyPool
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func within1(a, b *uint256.Int) bool {
	if a.Gt(b) {
		return new(uint256.Int).Sub(a, b).Cmp(one) <= 0
	}
	return new(uint256.Int).Sub(b, a).Cmp(one) <= 0
}

// getD solves the stableswap invariant for D given normalized balances xp.
func getD(xp [nCoins]*uint256.Int, amp uint64) (*uint256.Int, error) {
	s := new(uint256.Int)
	for _, x := range xp {
		s.Add(s, x)
	}
	if s.IsZero() {
		return new(uint256.Int), nil
	}

	ann := uint256.NewInt(amp * nCoins)
	annMinus1 := new(uint256.Int).Sub(ann, one)
	d := s.Clone()
	for round := 0; round < maxRounds; round++ {
		dp := d.Clone()
		for _, x := range xp {
			xn, err := mul(x, nBig)
			if err != nil {
				return nil, err
			}
			if dp, err = mulDiv(dp, d, xn); err != nil {
				return nil, err
			}
		}
		prev := d

		// d = (ann*s + dp*n) * d / ((ann-1)*d + (n+1)*dp)
		annS, err := mul(ann, s)
		if err != nil {
			return nil, err
		}
		dpN, err := mul(dp, nBig)
		if err != nil {
			return nil, err
		}
		num, err := add(annS, dpN)
		if err != nil {
			return nil, err
		}
		left, err := mul(annMinus1, d)
		if err != nil {
			return nil, err
		}
		right, err := mul(uint256.NewInt(nCoins+1), dp)
		if err != nil {
			return nil, err
		}
		den, err := add(left, right)
		if err != nil {
			return nil, err
		}
		if d, err = mulDiv(num, d, den); err != nil {
			return nil, err
		}
		if within1(d, prev) {
			return d, nil
		}
	}
	return nil, ErrNoConvergence
}

// getY returns the new balance of coin j when coin i's normalized balance is
// set to x, keeping D constant.
func getY(i, j int, x *uint256.Int, xp [nCoins]*uint256.Int, amp uint64) (*uint256.Int, error) {
	d, err := getD(xp, amp)
	if err != nil {
		return nil, err
	}
	ann := uint256.NewInt(amp * nCoins)

	c := d.Clone()
	s := new(uint256.Int)
	for k := 0; k < nCoins; k++ {
		var xk *uint256.Int
		switch k {
		case i:
			xk = x
		case j:
			continue
		default:
			xk = xp[k]
		}
		s.Add(s, xk)
		xn, err := mul(xk, nBig)
		if err != nil {
			return nil, err
		}
		if c, err = mulDiv(c, d, xn); err != nil {
			return nil, err
		}
	}
	annN, err := mul(ann, nBig)
	if err != nil {
		return nil, err
	}
	if c, err = mulDiv(c, d, annN); err != nil {
		return nil, err
	}
	b, err := add(s, new(uint256.Int).Div(d, ann))
	if err != nil {
		return nil, err
	}

	y := d.Clone()
	for round := 0; round < maxRounds; round++ {
		prev := y
		// y = (y*y + c) / (2*y + b - d)
		yy, err := mul(y, y)
		if err != nil {
			return nil, err
		}
		num, err := add(yy, c)
		if err != nil {
			return nil, err
		}
		den := new(uint256.Int).Lsh(y, 1)
		den.Add(den, b)
		if den.Lt(d) || den.Eq(d) {
			return nil, ErrNoConvergence
		}
		den.Sub(den, d)
		y = new(uint256.Int).Div(num, den)
		if within1(y, prev) {
			return y, nil
		}
	}
	return nil, ErrNoConvergence
}
