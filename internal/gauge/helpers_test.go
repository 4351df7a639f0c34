package gauge

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"GaugeKeeper/internal/model"
)

var errOracleDown = errors.New("oracle down")

// fakeOracle returns fixed voting power regardless of t.
type fakeOracle struct {
	mu    sync.Mutex
	power map[model.Address]*uint256.Int
	total *uint256.Int
	fail  bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{power: make(map[model.Address]*uint256.Int), total: new(uint256.Int)}
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) set(addr model.Address, vp uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if old, ok := f.power[addr]; ok {
		f.total.Sub(f.total, old)
	}
	v := uint256.NewInt(vp)
	f.power[addr] = v
	f.total.Add(f.total, v)
}

func (f *fakeOracle) VotingPowerOf(addr model.Address, _ uint64) (*uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errOracleDown
	}
	if v, ok := f.power[addr]; ok {
		return v.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (f *fakeOracle) TotalVotingPower(_ uint64) (*uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errOracleDown
	}
	return f.total.Clone(), nil
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func e18(v uint64) *uint256.Int {
	return new(uint256.Int).Mul(u(v), uint256.MustFromDecimal("1000000000000000000"))
}

// sumWorking recomputes the working supply from scratch.
func sumWorking(l *Ledger) *uint256.Int {
	sum := new(uint256.Int)
	for _, a := range l.Accounts() {
		sum.Add(sum, l.WorkingBalanceOf(a))
	}
	return sum
}
