package escrow

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"GaugeKeeper/internal/model"
)

type fixedDelegation map[model.Address]uint64

func (d fixedDelegation) AdjustedBalanceOf(addr model.Address, _ uint64) (*uint256.Int, error) {
	return uint256.NewInt(d[addr]), nil
}

func TestBoostProxy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CreateLock("alice", uint256.NewInt(MaxTime), start+4*Week, start))

	p := NewBoostProxy(m, nil)
	require.Nil(t, p.Delegation())

	vp, err := p.VotingPowerOf("alice", start)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(4*Week).Dec(), vp.Dec())

	p.SetDelegation(fixedDelegation{"alice": 7, "bob": 11})
	vp, err = p.VotingPowerOf("alice", start)
	require.NoError(t, err)
	require.Equal(t, "7", vp.Dec())
	vp, err = p.VotingPowerOf("bob", start)
	require.NoError(t, err)
	require.Equal(t, "11", vp.Dec())

	// totals always come from the escrow
	total, err := p.TotalVotingPower(start)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(4*Week).Dec(), total.Dec())

	p.SetDelegation(nil)
	vp, err = p.VotingPowerOf("bob", start)
	require.NoError(t, err)
	require.True(t, vp.IsZero())
	require.Equal(t, "proxy(memory)", p.Name())
}

func TestBoostProxy_DelegationBypassesEscrow(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockOracle(ctrl)
	inner.EXPECT().TotalVotingPower(uint64(5)).Return(uint256.NewInt(100), nil).Times(1)
	inner.EXPECT().Name().Return("mock").AnyTimes()

	p := NewBoostProxy(inner, fixedDelegation{"alice": 3})
	vp, err := p.VotingPowerOf("alice", 5)
	require.NoError(t, err)
	require.Equal(t, "3", vp.Dec())

	total, err := p.TotalVotingPower(5)
	require.NoError(t, err)
	require.Equal(t, "100", total.Dec())
	require.Equal(t, "proxy(mock)", p.Name())
}
