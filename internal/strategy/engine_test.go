package strategy

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"GaugeKeeper/internal/escrow"
	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/model"
)

func pos(raw, working uint64) *model.Position {
	return &model.Position{
		Owner:          "alice",
		RawBalance:     uint256.NewInt(raw),
		WorkingBalance: uint256.NewInt(working),
	}
}

func TestEvaluate_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		pos    *model.Position
		fair   uint64
		vp     uint64
		status model.BoostStatus
		excess uint64
	}{
		{"empty", pos(0, 0), 0, 5, model.StatusEmpty, 0},
		{"floor", pos(1000, 400), 400, 0, model.StatusFloor, 0},
		{"floor below fair", pos(1000, 400), 700, 9, model.StatusFloor, 0},
		{"boosted", pos(1000, 1000), 1000, 9, model.StatusBoosted, 0},
		{"boosted below fair", pos(1000, 600), 900, 9, model.StatusBoosted, 0},
		{"decaying", pos(1000, 1000), 550, 1, model.StatusDecaying, 450},
		{"kickable", pos(1000, 1000), 400, 0, model.StatusKickable, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Evaluate(tt.pos, uint256.NewInt(tt.fair), uint256.NewInt(tt.vp))
			require.Equal(t, tt.status, a.Status)
			require.Equal(t, uint256.NewInt(tt.excess).Dec(), a.Excess.Dec())
			require.Equal(t, uint256.NewInt(tt.pos.RawBalance.Uint64()*40/100).Dec(), a.Floor.Dec())
		})
	}
}

func TestCandidates_OrderedByExcess(t *testing.T) {
	as := []model.Assessment{
		Evaluate(pos(1000, 1000), uint256.NewInt(400), new(uint256.Int)),
		Evaluate(pos(1000, 1000), uint256.NewInt(550), uint256.NewInt(1)),
		Evaluate(pos(5000, 4000), uint256.NewInt(2000), new(uint256.Int)),
		Evaluate(pos(1000, 400), uint256.NewInt(400), new(uint256.Int)),
	}
	got := Candidates(as)
	require.Len(t, got, 2)
	require.Equal(t, "2000", got[0].Excess.Dec())
	require.Equal(t, "600", got[1].Excess.Dec())
}

func TestAssess_Ledger(t *testing.T) {
	ve := escrow.NewMemory()
	l := gauge.NewLedger(ve)
	now := 10 * escrow.Week

	require.NoError(t, ve.CreateLock("alice", uint256.NewInt(1_000_000), now+2*escrow.Week, now))
	_, err := l.Deposit("alice", uint256.NewInt(1000), now)
	require.NoError(t, err)
	_, err = l.Deposit("bob", uint256.NewInt(1000), now)
	require.NoError(t, err)

	as, err := Assess(l, now)
	require.NoError(t, err)
	require.Len(t, as, 2)
	require.Equal(t, model.StatusBoosted, as[0].Status)
	require.Equal(t, model.StatusFloor, as[1].Status)
	require.Empty(t, Candidates(as))

	as, err = Assess(l, now+3*escrow.Week)
	require.NoError(t, err)
	require.Equal(t, model.StatusKickable, as[0].Status)
	require.Len(t, Candidates(as), 1)

	ghost, err := AssessAccount(l, "ghost", now)
	require.NoError(t, err)
	require.Equal(t, model.StatusEmpty, ghost.Status)
}
