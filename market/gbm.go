package market

import (
	"math"
	"math/rand"
)

// PriceSource 公允价来源。引擎每个 tick 调一次 Step，其余时刻
// 用 CurrentPrice 读取最近价格。
type PriceSource interface {
	CurrentPrice() float64
	Step() float64
}

// GBMPriceProcess 几何布朗运动价格过程，给定种子后整条路径确定。
type GBMPriceProcess struct {
	price float64
	mu    float64
	sigma float64
	dt    float64
	rng   *rand.Rand
}

// NewGBMPriceProcess 创建 GBM 过程。
func NewGBMPriceProcess(initialPrice, mu, sigma, dt float64, seed int64) *GBMPriceProcess {
	return &GBMPriceProcess{
		price: initialPrice,
		mu:    mu,
		sigma: sigma,
		dt:    dt,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// CurrentPrice 返回当前价格。
func (g *GBMPriceProcess) CurrentPrice() float64 {
	return g.price
}

// Step 前进一步：S <- S * exp((mu - sigma^2/2)dt + sigma*sqrt(dt)*Z)。
func (g *GBMPriceProcess) Step() float64 {
	z := g.rng.NormFloat64()
	drift := (g.mu - 0.5*g.sigma*g.sigma) * g.dt
	diffusion := g.sigma * math.Sqrt(g.dt) * z
	g.price *= math.Exp(drift + diffusion)
	return g.price
}
