// Package metrics provides Prometheus metrics for the simulator
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SimulationsRun 已完成的模拟次数
	SimulationsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amm_match_simulations_total",
		Help: "Number of completed simulations",
	})

	// SimulationErrors 因策略/配置错误中止的模拟次数
	SimulationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amm_match_simulation_errors_total",
		Help: "Number of simulations aborted with an error",
	})

	// MatchesRun 已完成的配对比赛次数
	MatchesRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amm_match_matches_total",
		Help: "Number of completed paired-seed matches",
	})
)

// StartMetricsServer 启动Prometheus指标服务器
func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()
}
