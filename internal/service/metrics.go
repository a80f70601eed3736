package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "margin_optimizer_decisions_total",
			Help: "Count of margin decisions by outcome.",
		},
		[]string{"outcome"},
	)

	// Margin the platform is asked to serve next
	currentMarginGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "margin_optimizer_current_margin_pct",
		Help: "Margin percentage after the latest decision",
	})

	stepGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "margin_optimizer_step_pct",
		Help: "Current hill-climb step size in margin points",
	})

	windowProfitGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "margin_optimizer_window_profit_dollars",
		Help: "Profit of the most recent performance window",
	})

	windowSRPMGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "margin_optimizer_window_srpm_dollars",
		Help: "Supply RPM of the most recent performance window",
	})

	runFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "margin_optimizer_run_failures_total",
		Help: "Count of runs that failed to fetch, decide, or apply",
	})
)

func init() {
	prometheus.MustRegister(
		decisionsTotal,
		currentMarginGauge,
		stepGauge,
		windowProfitGauge,
		windowSRPMGauge,
		runFailuresTotal,
	)
}
