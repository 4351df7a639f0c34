package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"GaugeKeeper/internal/config"
	"GaugeKeeper/internal/escrow"
)

const week = escrow.Week

func TestNewOracle_LockEndSurvivesRestart(t *testing.T) {
	boot := 100 * week
	cfg := &config.Config{}
	cfg.Escrow.Locks = []config.Lock{{Account: "Alice", Amount: "100", End: boot + 4*week}}

	first, err := newOracle(cfg, boot, zap.NewNop())
	require.NoError(t, err)
	vp, err := first.VotingPowerOf("alice", boot+5*week)
	require.NoError(t, err)
	require.True(t, vp.IsZero())

	// a restart two weeks later still sees the original end
	restarted, err := newOracle(cfg, boot+2*week, zap.NewNop())
	require.NoError(t, err)
	at, err := first.VotingPowerOf("alice", boot+3*week)
	require.NoError(t, err)
	again, err := restarted.VotingPowerOf("alice", boot+3*week)
	require.NoError(t, err)
	require.Equal(t, at.Dec(), again.Dec())

	// and a restart after the end has nothing left to seed
	expired, err := newOracle(cfg, boot+6*week, zap.NewNop())
	require.NoError(t, err)
	total, err := expired.TotalVotingPower(boot + 6*week)
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestNewOracle_BadLockAmount(t *testing.T) {
	cfg := &config.Config{}
	cfg.Escrow.Locks = []config.Lock{{Account: "alice", Amount: "lots", End: 200 * week}}
	_, err := newOracle(cfg, 100*week, zap.NewNop())
	require.Error(t, err)
}

func TestNewOracle_DelegationURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"voting_power":"77"}`))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Escrow.DelegationURL = srv.URL
	o, err := newOracle(cfg, 100*week, zap.NewNop())
	require.NoError(t, err)

	vp, err := o.VotingPowerOf("bob", 100*week)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(77).Dec(), vp.Dec())
	require.Equal(t, "proxy(memory)", o.Name())
}
