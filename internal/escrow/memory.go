package escrow

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"GaugeKeeper/internal/model"
)

const (
	// Week is the lock-end granularity in seconds.
	Week uint64 = 7 * 86400
	// MaxTime is the longest lock duration in seconds.
	MaxTime uint64 = 4 * 365 * 86400
)

var (
	ErrZeroAmount     = errors.New("lock amount must be positive")
	ErrLockExists     = errors.New("withdraw old tokens first")
	ErrNoLock         = errors.New("no existing lock found")
	ErrLockExpired    = errors.New("lock expired")
	ErrUnlockTimePast = errors.New("can only lock until time in the future")
	ErrUnlockTooFar   = errors.New("voting lock can be 4 years max")
	ErrUnlockNotLater = errors.New("can only increase lock duration")
	ErrLockNotExpired = errors.New("the lock didn't expire")
)

var maxTime = uint256.NewInt(MaxTime)

// Memory is an in-process vote escrow whose locks decay linearly to zero at
// their end time. It is used for local runs and tests.
type Memory struct {
	mu    sync.RWMutex
	locks map[model.Address]model.Lock
}

// NewMemory creates an empty escrow.
func NewMemory() *Memory {
	return &Memory{locks: make(map[model.Address]model.Lock)}
}

func (m *Memory) Name() string { return "memory" }

// CreateLock locks amount for addr until unlockTime rounded down to whole weeks.
func (m *Memory) CreateLock(addr model.Address, amount *uint256.Int, unlockTime, now uint64) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	end := roundWeek(unlockTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.locks[addr]; ok && !l.Amount.IsZero() {
		return ErrLockExists
	}
	if end <= now {
		return ErrUnlockTimePast
	}
	if end > now+MaxTime {
		return ErrUnlockTooFar
	}
	m.locks[addr] = model.Lock{Amount: amount.Clone(), End: end}
	return nil
}

// IncreaseAmount adds tokens to an active lock without changing its end.
func (m *Memory) IncreaseAmount(addr model.Address, amount *uint256.Int, now uint64) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[addr]
	if !ok || l.Amount.IsZero() {
		return ErrNoLock
	}
	if l.End <= now {
		return ErrLockExpired
	}
	l.Amount = new(uint256.Int).Add(l.Amount, amount)
	m.locks[addr] = l
	return nil
}

// IncreaseUnlockTime extends an active lock.
func (m *Memory) IncreaseUnlockTime(addr model.Address, unlockTime, now uint64) error {
	end := roundWeek(unlockTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[addr]
	if !ok || l.Amount.IsZero() {
		return ErrNoLock
	}
	if l.End <= now {
		return ErrLockExpired
	}
	if end <= l.End {
		return ErrUnlockNotLater
	}
	if end > now+MaxTime {
		return ErrUnlockTooFar
	}
	l.End = end
	m.locks[addr] = l
	return nil
}

// Withdraw releases an expired lock and returns the unlocked amount.
func (m *Memory) Withdraw(addr model.Address, now uint64) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[addr]
	if !ok || l.Amount.IsZero() {
		return nil, ErrNoLock
	}
	if now < l.End {
		return nil, ErrLockNotExpired
	}
	delete(m.locks, addr)
	return l.Amount, nil
}

// Lock returns the current lock of addr, if any.
func (m *Memory) Lock(addr model.Address) (model.Lock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.locks[addr]
	if !ok {
		return model.Lock{}, false
	}
	return model.Lock{Amount: l.Amount.Clone(), End: l.End}, true
}

// VotingPowerOf returns amount*(end-t)/MaxTime, or zero at and after end.
func (m *Memory) VotingPowerOf(addr model.Address, t uint64) (*uint256.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decayed(m.locks[addr], t), nil
}

// TotalVotingPower sums the voting power of every lock at t.
func (m *Memory) TotalVotingPower(t uint64) (*uint256.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := new(uint256.Int)
	for _, l := range m.locks {
		total.Add(total, decayed(l, t))
	}
	return total, nil
}

func decayed(l model.Lock, t uint64) *uint256.Int {
	if l.Amount == nil || t >= l.End {
		return new(uint256.Int)
	}
	remaining := uint256.NewInt(l.End - t)
	vp, _ := new(uint256.Int).MulDivOverflow(l.Amount, remaining, maxTime)
	return vp
}

func roundWeek(t uint64) uint64 {
	return t / Week * Week
}
