package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotelens_pipeline_stage_outcomes_total",
		Help: "Pipeline stage outcomes by stage and status.",
	}, []string{"stage", "status"})

	analyzesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotelens_pipeline_analyzes_total",
		Help: "Completed article analyzes.",
	})
)
