package main

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"GaugeKeeper/internal/config"
	"GaugeKeeper/internal/escrow"
	"GaugeKeeper/internal/model"
)

// newOracle picks the remote escrow when configured, otherwise an in-memory
// escrow seeded from config. Either is wrapped in the boost delegation proxy,
// which reads adjusted balances from escrow.delegation_url when set.
func newOracle(cfg *config.Config, now uint64, log *zap.Logger) (escrow.Oracle, error) {
	var delegation escrow.Delegation
	if cfg.Escrow.DelegationURL != "" {
		delegation = escrow.NewHTTPDelegation(cfg.Escrow.DelegationURL, cfg.Escrow.APIKey, cfg.Proxy)
	}

	if cfg.Escrow.BaseURL != "" {
		return escrow.NewBoostProxy(escrow.NewHTTPOracle(cfg.Escrow.BaseURL, cfg.Escrow.APIKey, cfg.Proxy), delegation), nil
	}

	ve := escrow.NewMemory()
	for _, l := range cfg.Escrow.Locks {
		addr := model.NormalizeAddress(l.Account)
		amount, err := uint256.FromDecimal(l.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "lock amount for %s", addr)
		}
		if l.End <= now {
			log.Warn("skipping expired lock", zap.String("account", addr.String()), zap.Uint64("end", l.End))
			continue
		}
		if err := ve.CreateLock(addr, amount, l.End, now); err != nil {
			return nil, errors.Wrapf(err, "seed lock for %s", addr)
		}
	}
	return escrow.NewBoostProxy(ve, delegation), nil
}
