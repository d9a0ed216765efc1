package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeRecorded = "recorded"
	OutcomeDegraded = "degraded"
	OutcomeNoop     = "noop"
)

var (
	// OperationsTotal counts ledger operations by handler and outcome.
	// Outcome "degraded" means the persistence layer failed and a mock
	// result was returned instead.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staking_operations_total",
			Help: "The total number of staking ledger operations",
		},
		[]string{"operation", "outcome"},
	)

	// OrdersExpired counts stake orders completed by the expiry sweeper.
	OrdersExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staking_orders_expired_total",
		Help: "The total number of stake orders completed by the expiry sweeper",
	})

	// LedgerSubmits counts intents submitted to the XRPL client.
	LedgerSubmits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staking_ledger_submits_total",
			Help: "The total number of intents submitted to the ledger client",
		},
		[]string{"kind"},
	)
)
