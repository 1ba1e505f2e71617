package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"amm-match-go/sim"
)

// AppConfig holds the full runtime configuration of the simulator.
type AppConfig struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Retail     RetailConfig     `yaml:"retail"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// SimulationConfig 模拟主参数。
type SimulationConfig struct {
	InitialX     float64 `yaml:"initialX"`
	InitialY     float64 `yaml:"initialY"`
	InitialPrice float64 `yaml:"initialPrice"`
	GBMMu        float64 `yaml:"gbmMu"`    // 漂移
	GBMSigma     float64 `yaml:"gbmSigma"` // 波动率
	GBMDt        float64 `yaml:"gbmDt"`    // 时间步长
	NSteps       int     `yaml:"nSteps"`
	Seed         *int64  `yaml:"seed"` // 缺省为 0
}

// RetailConfig 散户订单流参数。
type RetailConfig struct {
	ArrivalRate float64 `yaml:"arrivalRate"` // 每 tick 期望订单数
	MeanSize    float64 `yaml:"meanSize"`    // 期望订单大小
	SizeSigma   float64 `yaml:"sizeSigma"`   // 大小离散度
	BuyProb     float64 `yaml:"buyProb"`     // 买入 X 概率
}

// LoggingConfig 日志配置。
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json 或 console
}

// MetricsConfig 指标服务配置。
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides selected fields from
// env vars if present. Only the seed is overridable, for sweep scripts.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("AMM_MATCH_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse AMM_MATCH_SEED: %w", err)
		}
		cfg.Simulation.Seed = &seed
	}
	return cfg, nil
}

// ToSimConfig 转成引擎配置。
func (c AppConfig) ToSimConfig() sim.Config {
	return sim.Config{
		InitialX:          c.Simulation.InitialX,
		InitialY:          c.Simulation.InitialY,
		InitialPrice:      c.Simulation.InitialPrice,
		GBMMu:             c.Simulation.GBMMu,
		GBMSigma:          c.Simulation.GBMSigma,
		GBMDt:             c.Simulation.GBMDt,
		RetailArrivalRate: c.Retail.ArrivalRate,
		RetailMeanSize:    c.Retail.MeanSize,
		RetailSizeSigma:   c.Retail.SizeSigma,
		RetailBuyProb:     c.Retail.BuyProb,
		NSteps:            c.Simulation.NSteps,
		Seed:              c.Simulation.Seed,
	}
}
