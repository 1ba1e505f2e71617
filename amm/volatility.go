package amm

import "fmt"

// VolResponsiveConfig 波动率响应策略配置。
type VolResponsiveConfig struct {
	BaseFeeBps float64 // 基准费率（基点）
	Lambda     float64 // EWMA 平滑系数（如 0.9，越大记忆越长）
	NominalVar float64 // 名义方差，用于归一化费率放大倍数
}

// DefaultVolResponsiveConfig 返回默认配置。
func DefaultVolResponsiveConfig() VolResponsiveConfig {
	return VolResponsiveConfig{
		BaseFeeBps: 30,
		Lambda:     0.9,
		NominalVar: 1e-6,
	}
}

// VolResponsiveFee 根据现货价格收益平方的 EWMA 调整费率：
//
//	fee = base * clamp(0.5 + 0.5*ewmaVar/nominalVar, 0.5, 2.0)
//
// 波动升高时扩大费率补偿逆向选择，平静期收窄费率吸引流量。
type VolResponsiveFee struct {
	cfg VolResponsiveConfig

	prevSpot    float64
	ewmaVar     float64
	initialized bool
}

// NewVolResponsiveFee 创建波动率响应策略，零值字段用默认值补齐。
func NewVolResponsiveFee(cfg VolResponsiveConfig) *VolResponsiveFee {
	def := DefaultVolResponsiveConfig()
	if cfg.BaseFeeBps <= 0 {
		cfg.BaseFeeBps = def.BaseFeeBps
	}
	if cfg.Lambda <= 0 || cfg.Lambda >= 1 {
		cfg.Lambda = def.Lambda
	}
	if cfg.NominalVar <= 0 {
		cfg.NominalVar = def.NominalVar
	}
	return &VolResponsiveFee{cfg: cfg}
}

func (s *VolResponsiveFee) Initialize(initialX, initialY float64) (FeeQuote, error) {
	if initialX <= 0 {
		return FeeQuote{}, fmt.Errorf("vol strategy: non-positive initial x reserve")
	}
	s.prevSpot = initialY / initialX
	s.ewmaVar = s.cfg.NominalVar
	s.initialized = true
	return SymmetricFee(FeeFromBps(s.cfg.BaseFeeBps)), nil
}

func (s *VolResponsiveFee) AfterSwap(trade TradeInfo) (FeeQuote, error) {
	if !s.initialized {
		return FeeQuote{}, fmt.Errorf("vol strategy: AfterSwap before Initialize")
	}
	if trade.ReserveX <= 0 {
		return FeeQuote{}, fmt.Errorf("vol strategy: non-positive reserve in trade")
	}
	spot := trade.ReserveY / trade.ReserveX

	// 单笔收益的平方进入 EWMA 方差
	ret := (spot - s.prevSpot) / s.prevSpot
	s.ewmaVar = s.cfg.Lambda*s.ewmaVar + (1-s.cfg.Lambda)*ret*ret
	s.prevSpot = spot

	mult := 0.5 + 0.5*s.ewmaVar/s.cfg.NominalVar
	if mult < 0.5 {
		mult = 0.5
	}
	if mult > 2.0 {
		mult = 2.0
	}
	return SymmetricFee(FeeFromBps(s.cfg.BaseFeeBps) * mult), nil
}

func (s *VolResponsiveFee) Name() string {
	return fmt.Sprintf("VolResponsive_%g", s.cfg.BaseFeeBps)
}
