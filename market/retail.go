package market

import (
	"math"
	"math/rand"
)

// Order 一笔散户订单。BuyX 为 true 表示散户买入 X（即 AMM 卖出 X）。
type Order struct {
	BuyX bool
	Size float64 // X 数量
}

// RetailTrader 散户订单流生成器：每个 tick 按泊松分布决定订单笔数，
// 订单大小服从对数正态分布，方向按固定概率抛硬币。
// 与价格过程使用独立种子（seed+1），两条随机流互不干扰。
type RetailTrader struct {
	arrivalRate float64 // 每 tick 期望订单数
	meanSize    float64 // 期望订单大小（X 数量）
	sizeSigma   float64 // 对数正态离散度
	buyProb     float64 // 买入 X 的概率
	rng         *rand.Rand
}

// NewRetailTrader 创建散户订单流生成器。
func NewRetailTrader(arrivalRate, meanSize, sizeSigma, buyProb float64, seed int64) *RetailTrader {
	return &RetailTrader{
		arrivalRate: arrivalRate,
		meanSize:    meanSize,
		sizeSigma:   sizeSigma,
		buyProb:     buyProb,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// GenerateOrders 生成当前 tick 的订单批次，可能为空。
func (r *RetailTrader) GenerateOrders() []Order {
	n := r.poisson(r.arrivalRate)
	if n == 0 {
		return nil
	}
	orders := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		size := r.lognormalSize()
		if size <= 0 {
			continue
		}
		orders = append(orders, Order{
			BuyX: r.rng.Float64() < r.buyProb,
			Size: size,
		})
	}
	return orders
}

// poisson Knuth 采样，lambda 很小时足够快。
func (r *RetailTrader) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	n := 0
	p := 1.0
	for {
		p *= r.rng.Float64()
		if p <= limit {
			return n
		}
		n++
	}
}

// lognormalSize 期望值等于 meanSize 的对数正态采样。
func (r *RetailTrader) lognormalSize() float64 {
	z := r.rng.NormFloat64()
	return r.meanSize * math.Exp(r.sizeSigma*z-0.5*r.sizeSigma*r.sizeSigma)
}
