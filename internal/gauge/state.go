package gauge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"GaugeKeeper/internal/model"
)

// State is the on-disk form of a ledger. 256-bit values are decimal strings.
type State struct {
	Positions     []PositionRecord `json:"positions"`
	RawSupply     string           `json:"raw_supply"`
	WorkingSupply string           `json:"working_supply"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PositionRecord is the on-disk form of a position.
type PositionRecord struct {
	Owner          string `json:"owner"`
	RawBalance     string `json:"raw_balance"`
	WorkingBalance string `json:"working_balance"`
	LastCheckpoint uint64 `json:"last_checkpoint"`
}

// LoadState reads the gauge state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{RawSupply: "0", WorkingSupply: "0"}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "decode gauge state")
	}
	return &state, nil
}

// SaveState writes the gauge state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	// write-then-rename so a crash never leaves a half-written file
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

// Snapshot captures every position and the totals.
func (l *Ledger) Snapshot() *State {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &State{
		Positions:     make([]PositionRecord, 0, len(l.positions)),
		RawSupply:     l.totals.RawSupply.Dec(),
		WorkingSupply: l.totals.WorkingSupply.Dec(),
	}
	for _, p := range l.positions {
		s.Positions = append(s.Positions, PositionRecord{
			Owner:          p.Owner.String(),
			RawBalance:     p.RawBalance.Dec(),
			WorkingBalance: p.WorkingBalance.Dec(),
			LastCheckpoint: p.LastCheckpoint,
		})
	}
	sortRecords(s.Positions)
	return s
}

// Save writes a snapshot of the ledger to filePath.
func (l *Ledger) Save(filePath string) error {
	return SaveState(filePath, l.Snapshot())
}

// Restore replaces the ledger contents with s. The stored totals must equal
// the sums over the stored positions, and every working balance must lie
// within its bounds; otherwise ErrCorruptState is returned and the ledger is
// left untouched.
func (l *Ledger) Restore(s *State) error {
	positions := make(map[model.Address]*model.Position, len(s.Positions))
	rawSum, workingSum := new(uint256.Int), new(uint256.Int)

	for _, rec := range s.Positions {
		owner := model.NormalizeAddress(rec.Owner)
		if owner == "" {
			return errors.Wrap(ErrCorruptState, "empty owner")
		}
		if _, dup := positions[owner]; dup {
			return errors.Wrapf(ErrCorruptState, "duplicate owner %s", owner)
		}
		raw, err := uint256.FromDecimal(rec.RawBalance)
		if err != nil {
			return errors.Wrapf(ErrCorruptState, "raw balance of %s: %v", owner, err)
		}
		working, err := uint256.FromDecimal(rec.WorkingBalance)
		if err != nil {
			return errors.Wrapf(ErrCorruptState, "working balance of %s: %v", owner, err)
		}
		if working.Gt(raw) {
			return errors.Wrapf(ErrCorruptState, "working balance of %s above raw balance", owner)
		}
		if _, overflow := rawSum.AddOverflow(rawSum, raw); overflow {
			return errors.Wrap(ErrCorruptState, "raw supply overflow")
		}
		if _, overflow := workingSum.AddOverflow(workingSum, working); overflow {
			return errors.Wrap(ErrCorruptState, "working supply overflow")
		}
		positions[owner] = &model.Position{
			Owner:          owner,
			RawBalance:     raw,
			WorkingBalance: working,
			LastCheckpoint: rec.LastCheckpoint,
		}
	}

	rawSupply, err := parseTotal(s.RawSupply)
	if err != nil {
		return errors.Wrapf(ErrCorruptState, "raw supply: %v", err)
	}
	workingSupply, err := parseTotal(s.WorkingSupply)
	if err != nil {
		return errors.Wrapf(ErrCorruptState, "working supply: %v", err)
	}
	if !rawSupply.Eq(rawSum) {
		return errors.Wrapf(ErrCorruptState, "raw supply %s != sum of balances %s", rawSupply.Dec(), rawSum.Dec())
	}
	if !workingSupply.Eq(workingSum) {
		return errors.Wrapf(ErrCorruptState, "working supply %s != sum of working balances %s", workingSupply.Dec(), workingSum.Dec())
	}

	l.mu.Lock()
	l.positions = positions
	l.totals = model.Totals{RawSupply: rawSupply, WorkingSupply: workingSupply}
	l.mu.Unlock()
	return nil
}

func parseTotal(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	return uint256.FromDecimal(s)
}

func sortRecords(recs []PositionRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Owner < recs[j].Owner })
}
