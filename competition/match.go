package competition

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"amm-match-go/amm"
	"amm-match-go/metrics"
	"amm-match-go/sim"
)

// StrategyFactory builds a fresh strategy instance per simulation;
// strategies can be stateful, so instances are never reused across seeds.
type StrategyFactory func() amm.FeeStrategy

// MatchResult outcome of a paired-seed match, from the submission's side.
type MatchResult struct {
	Sims   int
	Wins   int
	Losses int
	Draws  int

	// Edges per-seed PnL(submission) - PnL(normalizer)
	Edges    []float64
	MeanEdge float64
	StdErr   float64
	TStat    float64
}

// MatchRunner runs submission and baseline on identical seeds and scores
// per-seed edge deltas, which removes most of the path variance from the
// comparison.
type MatchRunner struct {
	cfg      sim.Config
	sims     int
	baseSeed int64
	log      *zap.Logger
}

// NewMatchRunner creates a runner for `sims` paired simulations starting
// at baseSeed. The Seed field of cfg is overridden per simulation.
func NewMatchRunner(cfg sim.Config, sims int, baseSeed int64, log *zap.Logger) (*MatchRunner, error) {
	if sims <= 0 {
		return nil, fmt.Errorf("sims must be positive, got %d", sims)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchRunner{cfg: cfg, sims: sims, baseSeed: baseSeed, log: log}, nil
}

// Run plays the match. A seed counts as a win for the submission when its
// PnL beats the normalizer's on that same seed.
func (m *MatchRunner) Run(submission, baseline StrategyFactory) (*MatchResult, error) {
	res := &MatchResult{Sims: m.sims, Edges: make([]float64, 0, m.sims)}

	for i := 0; i < m.sims; i++ {
		seed := m.baseSeed + int64(i)
		cfg := m.cfg
		cfg.Seed = &seed

		engine := sim.NewEngine(cfg, m.log)
		simRes, err := engine.Run(submission(), baseline())
		if err != nil {
			metrics.SimulationErrors.Inc()
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		metrics.SimulationsRun.Inc()

		edge := simRes.PnL[sim.SubmissionName] - simRes.PnL[sim.BaselineName]
		res.Edges = append(res.Edges, edge)
		switch {
		case edge > 0:
			res.Wins++
		case edge < 0:
			res.Losses++
		default:
			res.Draws++
		}
	}

	res.MeanEdge, res.StdErr = meanStdErr(res.Edges)
	if res.StdErr > 0 {
		res.TStat = res.MeanEdge / res.StdErr
	}
	metrics.MatchesRun.Inc()

	m.log.Info("match complete",
		zap.Int("sims", res.Sims),
		zap.Int("wins", res.Wins),
		zap.Int("losses", res.Losses),
		zap.Int("draws", res.Draws),
		zap.Float64("mean_edge", res.MeanEdge),
		zap.Float64("t_stat", res.TStat))
	return res, nil
}

// UpdateElo feeds a match outcome into a rating table.
func UpdateElo(elo *EloRating, submissionName, baselineName string, res *MatchResult) {
	elo.UpdateRatings(submissionName, baselineName, res.Wins, res.Losses)
}

func meanStdErr(xs []float64) (mean, stderr float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= n
	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	variance := ss / (n - 1)
	return mean, math.Sqrt(variance / n)
}
