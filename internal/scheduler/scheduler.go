package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/metrics"
	"GaugeKeeper/internal/model"
	"GaugeKeeper/internal/notifier"
	"GaugeKeeper/internal/recorder"
	"GaugeKeeper/internal/strategy"
)

// Notifier delivers keeper reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks of the keeper.
type Scheduler struct {
	Cron      *cron.Cron
	Ledger    *gauge.Ledger
	Notifier  Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Keeper    model.Address
	StateFile string
	Now       func() uint64
	Ctx       context.Context

	log *zap.Logger
}

// NewScheduler creates a new Scheduler. tn may be nil when Telegram is not configured.
func NewScheduler(ctx context.Context, l *gauge.Ledger, tn Notifier, rec recorder.Recorder, m *metrics.Metrics,
	keeper model.Address, stateFile string, log *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Ledger:    l,
		Notifier:  tn,
		Recorder:  rec,
		Metrics:   m,
		Keeper:    keeper,
		StateFile: stateFile,
		Now:       func() uint64 { return uint64(time.Now().Unix()) },
		Ctx:       ctx,
		log:       log.Named("scheduler"),
	}
}

// RegisterAll registers the sweep, supply snapshot and state checkpoint tasks.
func (s *Scheduler) RegisterAll(sweepCron, snapshotCron, checkpointCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return errors.Wrap(err, "register sweep task")
	}
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return errors.Wrap(err, "register snapshot task")
	}
	if _, err := s.Cron.AddFunc(checkpointCron, s.checkpointTask); err != nil {
		return errors.Wrap(err, "register checkpoint task")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Sweep assesses every account and kicks those whose lock has expired while
// they still hold a boosted working balance.
func (s *Scheduler) Sweep() (*recorder.SweepReport, []*model.Event, error) {
	now := s.Now()
	as, err := strategy.Assess(s.Ledger, now)
	if err != nil {
		return nil, nil, errors.Wrap(err, "assess accounts")
	}

	report := &recorder.SweepReport{Time: now, Scanned: len(as)}
	for _, a := range as {
		if a.Status == model.StatusDecaying {
			report.Decaying++
		}
	}

	var kicks []*model.Event
	for _, c := range strategy.Candidates(as) {
		target := c.Position.Owner
		evt, err := s.Ledger.Kick(target, s.Keeper, now)
		if err != nil {
			if reason := gauge.KickRejection(err); reason != "" {
				s.Metrics.KickRejected(reason)
				s.log.Debug("kick skipped", zap.String("account", target.String()), zap.String("reason", reason))
				continue
			}
			report.Failed++
			s.log.Error("kick failed", zap.String("account", target.String()), zap.Error(err))
			continue
		}
		kicks = append(kicks, evt)
		s.Metrics.Observe(evt)
		if err := s.Recorder.RecordEvent(evt); err != nil {
			s.log.Error("record kick", zap.Error(err))
		}
		s.log.Info("kicked",
			zap.String("account", target.String()),
			zap.String("working_before", evt.WorkingBefore.Dec()),
			zap.String("working_after", evt.WorkingAfter.Dec()),
		)
	}

	report.Kicked = len(kicks)
	report.WorkingSupply = s.Ledger.TotalWorkingSupply().Dec()
	s.Metrics.SweepCompleted(report.Kicked)
	if err := s.Recorder.RecordSweep(report); err != nil {
		s.log.Error("record sweep", zap.Error(err))
	}
	return report, kicks, nil
}

func (s *Scheduler) sweepTask() {
	s.log.Info("running kick sweep")
	report, kicks, err := s.Sweep()
	if err != nil {
		s.log.Error("sweep", zap.Error(err))
		s.trySend("❌ Sweep failed: " + err.Error())
		return
	}
	if len(kicks) > 0 || report.Failed > 0 {
		s.trySend(notifier.FormatSweepReport(report, kicks))
	}
}

// Snapshot records the current totals.
func (s *Scheduler) Snapshot() *recorder.SupplySnapshot {
	totals := s.Ledger.Totals()
	snap := &recorder.SupplySnapshot{
		Time:          s.Now(),
		Accounts:      len(s.Ledger.Accounts()),
		RawSupply:     totals.RawSupply.Dec(),
		WorkingSupply: totals.WorkingSupply.Dec(),
	}
	s.Metrics.SetTotals(totals)
	if err := s.Recorder.RecordSupply(snap); err != nil {
		s.log.Error("record supply", zap.Error(err))
	}
	return snap
}

func (s *Scheduler) snapshotTask() {
	snap := s.Snapshot()
	s.log.Info("supply snapshot",
		zap.Int("accounts", snap.Accounts),
		zap.String("raw_supply", snap.RawSupply),
		zap.String("working_supply", snap.WorkingSupply),
	)
}

// Checkpoint writes the ledger state to disk.
func (s *Scheduler) Checkpoint() error {
	if s.StateFile == "" {
		return nil
	}
	return s.Ledger.Save(s.StateFile)
}

func (s *Scheduler) checkpointTask() {
	if err := s.Checkpoint(); err != nil {
		s.log.Error("save state", zap.String("path", s.StateFile), zap.Error(err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return usage
	}
	switch fields[0] {
	case "/supply":
		return notifier.FormatSupplyStatus(s.Ledger.Totals(), len(s.Ledger.Accounts()), s.Now())
	case "/account":
		if len(fields) < 2 {
			return "usage: /account &lt;address&gt;"
		}
		a, err := strategy.AssessAccount(s.Ledger, model.NormalizeAddress(fields[1]), s.Now())
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatAccount(a)
	case "/sweep":
		report, kicks, err := s.Sweep()
		if err != nil {
			return "❌ Sweep failed: " + err.Error()
		}
		return notifier.FormatSweepReport(report, kicks)
	default:
		return usage
	}
}

const usage = "Commands:\n• /supply\n• /account &lt;address&gt;\n• /sweep"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
