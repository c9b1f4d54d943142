package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsRecordedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transactions_recorded_total",
			Help:      "Total number of ledger transactions committed.",
		},
		[]string{"type"}, // DEDUCT, CREDIT
	)

	mutationsRejectedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "mutations_rejected_total",
			Help:      "Total number of balance mutations rejected before commit.",
		},
		[]string{"reason"}, // invalid_amount, account_not_found, insufficient_balance
	)

	accountsCreatedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "accounts_created_total",
			Help:      "Total number of token accounts created.",
		},
	)
)
