package config

import (
	"errors"
	"fmt"
)

// Validate applies structural checks that make a config unusable; the
// engine re-validates the simulation parameters itself at run time.
func Validate(cfg AppConfig) error {
	s := cfg.Simulation
	if s.InitialX <= 0 || s.InitialY <= 0 {
		return fmt.Errorf("simulation.initialX/initialY must be positive (%g, %g)", s.InitialX, s.InitialY)
	}
	if s.InitialPrice <= 0 {
		return fmt.Errorf("simulation.initialPrice must be positive, got %g", s.InitialPrice)
	}
	if s.GBMDt <= 0 {
		return fmt.Errorf("simulation.gbmDt must be positive, got %g", s.GBMDt)
	}
	if s.GBMSigma < 0 {
		return fmt.Errorf("simulation.gbmSigma must be >= 0, got %g", s.GBMSigma)
	}
	if s.NSteps < 0 {
		return fmt.Errorf("simulation.nSteps must be >= 0, got %d", s.NSteps)
	}

	r := cfg.Retail
	if r.ArrivalRate < 0 || r.MeanSize < 0 || r.SizeSigma < 0 {
		return errors.New("retail parameters must be >= 0")
	}
	if r.BuyProb < 0 || r.BuyProb > 1 {
		return fmt.Errorf("retail.buyProb must be in [0, 1], got %g", r.BuyProb)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return errors.New("metrics.addr required when metrics.enabled")
	}
	return nil
}
