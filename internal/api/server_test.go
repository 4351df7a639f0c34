package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"GaugeKeeper/internal/escrow"
	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/metrics"
	"GaugeKeeper/internal/recorder"
)

const start = 100 * escrow.Week

func newTestServer(t *testing.T) (*httptest.Server, *escrow.Memory, *uint64) {
	ve := escrow.NewMemory()
	require.NoError(t, ve.CreateLock("alice", uint256.NewInt(100), start+4*escrow.Week, start))

	reg := prometheus.NewRegistry()
	m, err := metrics.New("gauge", reg)
	require.NoError(t, err)

	s := NewServer(gauge.NewLedger(ve), recorder.NewNoopRecorder(), m, reg, zap.NewNop())
	now := uint64(start)
	s.Now = func() uint64 { return now }

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv, ve, &now
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestDepositAndRead(t *testing.T) {
	srv, _, _ := newTestServer(t)

	code, body := do(t, http.MethodPost, srv.URL+"/v1/accounts/ALICE/deposit", `{"amount":"1000"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "DEPOSIT", body["kind"])
	require.Equal(t, "alice", body["account"])
	require.Equal(t, "1000", body["working_balance"])

	code, body = do(t, http.MethodPost, srv.URL+"/v1/accounts/bob/deposit", `{"amount":"1000"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "400", body["working_balance"])
	require.Equal(t, "1400", body["working_supply"])

	code, body = do(t, http.MethodGet, srv.URL+"/v1/supply", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "2000", body["raw_supply"])
	require.Equal(t, "1400", body["working_supply"])
	require.EqualValues(t, 2, body["accounts"])

	code, body = do(t, http.MethodGet, srv.URL+"/v1/accounts/alice", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "BOOSTED", body["status"])
	require.Equal(t, "400", body["floor"])
}

func TestKickFlow(t *testing.T) {
	srv, _, now := newTestServer(t)

	code, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts/alice/deposit", `{"amount":"1000"}`)
	require.Equal(t, http.StatusOK, code)

	*now = start + escrow.Week
	code, body := do(t, http.MethodPost, srv.URL+"/v1/accounts/alice/kick", `{"caller":"bob"}`)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, gauge.ErrKickNotAllowed.Error(), body["error"])

	*now = start + 5*escrow.Week
	code, body = do(t, http.MethodPost, srv.URL+"/v1/accounts/alice/kick", `{"caller":"bob"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "KICK", body["kind"])
	require.Equal(t, "bob", body["caller"])
	require.Equal(t, "1000", body["working_before"])
	require.Equal(t, "400", body["working_balance"])

	code, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/alice/kick", `{"caller":"bob"}`)
	require.Equal(t, http.StatusConflict, code)
}

func TestErrorMapping(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"malformed json", "/v1/accounts/alice/deposit", `{`, http.StatusBadRequest},
		{"negative amount", "/v1/accounts/alice/deposit", `{"amount":"-1"}`, http.StatusBadRequest},
		{"empty amount", "/v1/accounts/alice/deposit", `{}`, http.StatusBadRequest},
		{"overdraw", "/v1/accounts/alice/withdraw", `{"amount":"1"}`, http.StatusConflict},
		{"kick without caller", "/v1/accounts/alice/kick", `{}`, http.StatusBadRequest},
		{"kick empty account", "/v1/accounts/carol/kick", `{"caller":"bob"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, http.MethodPost, srv.URL+tt.path, tt.body)
			require.Equal(t, tt.status, code)
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestOverflowIsUnprocessable(t *testing.T) {
	srv, _, _ := newTestServer(t)
	maxAmount := new(uint256.Int).SetAllOne().Dec()

	code, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts/alice/deposit", `{"amount":"`+maxAmount+`"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/bob/deposit", `{"amount":"1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestPokeUnknownAccount(t *testing.T) {
	srv, _, _ := newTestServer(t)
	code, body := do(t, http.MethodPost, srv.URL+"/v1/accounts/dave/poke", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "POKE", body["kind"])
	require.Equal(t, "0", body["working_balance"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	code, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts/alice/deposit", `{"amount":"1000"}`)
	require.Equal(t, http.StatusOK, code)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `gauge_ledger_events{kind="DEPOSIT"} 1`)
	require.Contains(t, string(raw), "gauge_working_supply 1000")
}
