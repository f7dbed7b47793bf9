package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SolversBannedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guard_solvers_banned_total",
		Help: "Number of times a solver was banned, by reason.",
	}, []string{"reason"})

	SolversReinstatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_solvers_reinstated_total",
		Help: "Number of times a solver's ban was lifted after a trial competition.",
	})

	ActiveSolversGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guard_active_solvers",
		Help: "Number of solvers currently allowed to participate.",
	})
)
