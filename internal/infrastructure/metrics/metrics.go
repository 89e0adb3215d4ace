package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Operation metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationAmount   *prometheus.HistogramVec

	// Log and projection metrics
	LegsAppended       prometheus.Counter
	AppendReplays      prometheus.Counter
	ProjectionsApplied prometheus.Counter
	PartialProjections prometheus.Counter

	// Account metrics
	AccountsInitialized prometheus.Counter

	// Reconciliation metrics
	Repairs           *prometheus.CounterVec
	ConsistencyChecks *prometheus.CounterVec
	RepairQueueDepth  prometheus.Gauge
}

// New creates all ledger metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Operation metrics
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_operations_total",
				Help: "Total ledger operations by type and outcome",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetledger_operation_amount",
				Help:    "Amounts moved by fund and transfer operations",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation", "asset"},
		),

		// Log and projection metrics
		LegsAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_legs_appended_total",
			Help: "Total transaction legs appended to the log",
		}),
		AppendReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_append_replays_total",
			Help: "Appends resolved against an already recorded txid",
		}),
		ProjectionsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_projections_applied_total",
			Help: "Total legs projected into balance records",
		}),
		PartialProjections: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_partial_projections_total",
			Help: "Operations whose append succeeded but projection failed",
		}),

		// Account metrics
		AccountsInitialized: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_accounts_initialized_total",
			Help: "Total balance records created by account initialization",
		}),

		// Reconciliation metrics
		Repairs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_repairs_total",
				Help: "Total projection repairs by outcome",
			},
			[]string{"status"},
		),
		ConsistencyChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_consistency_checks_total",
				Help: "Total ledger consistency checks by outcome",
			},
			[]string{"result"},
		),
		RepairQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assetledger_repair_queue_depth",
			Help: "Txids waiting for projection repair",
		}),
	}
}
