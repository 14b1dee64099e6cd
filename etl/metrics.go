package etl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exhibit",
		Subsystem: "etl",
		Name:      "rows_emitted_total",
		Help:      "Output rows emitted, per output table.",
	}, []string{"table"})

	keysSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exhibit",
		Subsystem: "etl",
		Name:      "keys_skipped_total",
		Help:      "Observations skipped due to key extraction failure, per output table.",
	}, []string{"table"})
)
