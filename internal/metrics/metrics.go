package metrics

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"GaugeKeeper/internal/model"
)

// Metrics exposes gauge state and keeper activity to Prometheus.
type Metrics struct {
	rawSupply      prometheus.Gauge
	workingSupply  prometheus.Gauge
	events         *prometheus.CounterVec
	kickRejections *prometheus.CounterVec
	sweeps         prometheus.Counter
	sweepKicks     prometheus.Histogram
}

// New creates and registers the gauge metrics.
func New(namespace string, registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rawSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "raw_supply",
			Help:      "Sum of all deposited balances",
		}),
		workingSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "working_supply",
			Help:      "Sum of all boosted working balances",
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_events",
				Help:      "Number of committed ledger mutations",
			},
			[]string{"kind"},
		),
		kickRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "kick_rejections",
				Help:      "Number of rejected kicks",
			},
			[]string{"reason"},
		),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps",
			Help:      "Number of completed kick sweeps",
		}),
		sweepKicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_kicks",
			Help:      "Accounts kicked per sweep",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.rawSupply, m.workingSupply, m.events, m.kickRejections, m.sweeps, m.sweepKicks,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records a committed ledger event.
func (m *Metrics) Observe(evt *model.Event) {
	m.events.WithLabelValues(string(evt.Kind)).Inc()
	m.SetTotals(model.Totals{RawSupply: evt.RawSupply, WorkingSupply: evt.WorkingSupply})
}

// SetTotals updates the supply gauges.
func (m *Metrics) SetTotals(t model.Totals) {
	m.rawSupply.Set(toFloat(t.RawSupply))
	m.workingSupply.Set(toFloat(t.WorkingSupply))
}

// KickRejected counts a kick that failed for reason.
func (m *Metrics) KickRejected(reason string) {
	m.kickRejections.WithLabelValues(reason).Inc()
}

// SweepCompleted records a finished sweep that kicked n accounts.
func (m *Metrics) SweepCompleted(n int) {
	m.sweeps.Inc()
	m.sweepKicks.Observe(float64(n))
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
