package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/model"
	"GaugeKeeper/internal/strategy"
)

var errBadRequest = errors.New("bad request")

type amountRequest struct {
	Amount string `json:"amount"`
}

type kickRequest struct {
	Caller string `json:"caller"`
}

type eventResponse struct {
	Kind           model.EventKind `json:"kind"`
	Account        model.Address   `json:"account"`
	Caller         model.Address   `json:"caller"`
	Time           uint64          `json:"time"`
	RawBalance     string          `json:"raw_balance"`
	WorkingBalance string          `json:"working_balance"`
	WorkingBefore  string          `json:"working_before"`
	RawSupply      string          `json:"raw_supply"`
	WorkingSupply  string          `json:"working_supply"`
}

type accountResponse struct {
	Account        model.Address     `json:"account"`
	RawBalance     string            `json:"raw_balance"`
	WorkingBalance string            `json:"working_balance"`
	LastCheckpoint uint64            `json:"last_checkpoint"`
	Fair           string            `json:"fair_working_balance"`
	Floor          string            `json:"floor"`
	VotingPower    string            `json:"voting_power"`
	Excess         string            `json:"excess"`
	Status         model.BoostStatus `json:"status"`
}

type supplyResponse struct {
	Accounts      int    `json:"accounts"`
	RawSupply     string `json:"raw_supply"`
	WorkingSupply string `json:"working_supply"`
}

func (s *Server) getSupply(w http.ResponseWriter, _ *http.Request) {
	totals := s.Ledger.Totals()
	writeJSON(w, http.StatusOK, supplyResponse{
		Accounts:      len(s.Ledger.Accounts()),
		RawSupply:     totals.RawSupply.Dec(),
		WorkingSupply: totals.WorkingSupply.Dec(),
	})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	addr := account(r)
	a, err := strategy.AssessAccount(s.Ledger, addr, s.Now())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		Account:        addr,
		RawBalance:     a.Position.RawBalance.Dec(),
		WorkingBalance: a.Position.WorkingBalance.Dec(),
		LastCheckpoint: a.Position.LastCheckpoint,
		Fair:           a.Fair.Dec(),
		Floor:          a.Floor.Dec(),
		VotingPower:    a.VotingPower.Dec(),
		Excess:         a.Excess.Dec(),
		Status:         a.Status,
	})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	amount, err := decodeAmount(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	evt, err := s.Ledger.Deposit(account(r), amount, s.Now())
	s.commit(w, evt, err)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	amount, err := decodeAmount(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	evt, err := s.Ledger.Withdraw(account(r), amount, s.Now())
	s.commit(w, evt, err)
}

func (s *Server) poke(w http.ResponseWriter, r *http.Request) {
	evt, err := s.Ledger.Poke(account(r), s.Now())
	s.commit(w, evt, err)
}

func (s *Server) kick(w http.ResponseWriter, r *http.Request) {
	var req kickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, errors.Wrap(errBadRequest, err.Error()))
		return
	}
	caller := model.NormalizeAddress(req.Caller)
	if caller == "" {
		s.fail(w, errors.Wrap(errBadRequest, "caller is required"))
		return
	}

	evt, err := s.Ledger.Kick(account(r), caller, s.Now())
	if reason := gauge.KickRejection(err); reason != "" {
		s.Metrics.KickRejected(reason)
	}
	s.commit(w, evt, err)
}

// commit reports a ledger mutation. The ledger has already applied evt, so
// recorder failures are only logged.
func (s *Server) commit(w http.ResponseWriter, evt *model.Event, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	s.Metrics.Observe(evt)
	if err := s.Recorder.RecordEvent(evt); err != nil {
		s.log.Error("record event", zap.String("kind", string(evt.Kind)), zap.Error(err))
	}
	s.log.Debug("ledger event",
		zap.String("kind", string(evt.Kind)),
		zap.String("account", evt.Account.String()),
		zap.String("working", evt.WorkingAfter.Dec()),
	)
	writeJSON(w, http.StatusOK, eventResponse{
		Kind:           evt.Kind,
		Account:        evt.Account,
		Caller:         evt.Caller,
		Time:           evt.Time,
		RawBalance:     evt.RawAfter.Dec(),
		WorkingBalance: evt.WorkingAfter.Dec(),
		WorkingBefore:  evt.WorkingBefore.Dec(),
		RawSupply:      evt.RawSupply.Dec(),
		WorkingSupply:  evt.WorkingSupply.Dec(),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, gauge.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, gauge.ErrKickNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, gauge.ErrInsufficientBalance), errors.Is(err, gauge.ErrKickNotNeeded):
		return http.StatusConflict
	case errors.Is(err, gauge.ErrArithmeticOverflow):
		return http.StatusUnprocessableEntity
	default:
		// every other ledger failure is a voting-power read
		return http.StatusBadGateway
	}
}

func account(r *http.Request) model.Address {
	return model.NormalizeAddress(mux.Vars(r)["addr"])
}

func decodeAmount(r *http.Request) (*uint256.Int, error) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	amount, err := uint256.FromDecimal(req.Amount)
	if err != nil {
		return nil, errors.Wrapf(errBadRequest, "amount %q: %v", req.Amount, err)
	}
	return amount, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
