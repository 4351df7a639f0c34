package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"GaugeKeeper/internal/api"
	"GaugeKeeper/internal/config"
	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/logging"
	"GaugeKeeper/internal/metrics"
	"GaugeKeeper/internal/model"
	"GaugeKeeper/internal/notifier"
	"GaugeKeeper/internal/recorder"
	"GaugeKeeper/internal/scheduler"
)

func main() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := pflag.String("config", defaultPath, "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("gaugekeeper failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("GaugeKeeper starting")

	oracle, err := newOracle(cfg, uint64(time.Now().Unix()), log)
	if err != nil {
		return err
	}
	log.Info("voting power source", zap.String("oracle", oracle.Name()))

	ledger := gauge.NewLedger(oracle)
	state, err := gauge.LoadState(cfg.Gauge.StateFile)
	if err != nil {
		return errors.Wrap(err, "load gauge state")
	}
	if err := ledger.Restore(state); err != nil {
		return errors.Wrap(err, "restore gauge state")
	}
	log.Info("gauge state restored",
		zap.String("path", cfg.Gauge.StateFile),
		zap.Int("accounts", len(state.Positions)),
	)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log.Named("recorder"))
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	reg := prometheus.NewRegistry()
	m, err := metrics.New("gaugekeeper", reg)
	if err != nil {
		return errors.Wrap(err, "register metrics")
	}
	m.SetTotals(ledger.Totals())

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var tn *notifier.TelegramNotifier
	var sn scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sn = tn
	}

	sched := scheduler.NewScheduler(ctx, ledger, sn, rec, m,
		model.NormalizeAddress(cfg.Keeper.Address), cfg.Gauge.StateFile, log)
	if err := sched.RegisterAll(cfg.Keeper.SweepCron, cfg.Keeper.SnapshotCron, cfg.Keeper.CheckpointCron); err != nil {
		return errors.Wrap(err, "register cron tasks")
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	srv := api.NewServer(ledger, rec, m, reg, log)
	serveErr := srv.Run(ctx, cfg.API.Listen)
	cancel()

	log.Info("shutdown signal received, stopping")
	sched.Stop()
	if err := sched.Checkpoint(); err != nil {
		log.Error("save state on shutdown", zap.Error(err))
	}
	log.Info("GaugeKeeper stopped")
	return serveErr
}
