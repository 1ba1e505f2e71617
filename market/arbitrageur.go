package market

import (
	"math"

	"go.uber.org/zap"

	"amm-match-go/amm"
)

// ArbResult 一次成功套利的结果，由引擎记账后即弃。
type ArbResult struct {
	AMMName string
	// Profit 以计价资产 Y 计的套利利润（按公允价折算）
	Profit  float64
	Side    amm.TradeSide // AMM 视角的方向
	AmountX float64
	AmountY float64
}

// maxReserveFraction 买入套利的单笔上限：最多吃掉 99% 的 X 储备，
// 避免把池子抽干引发数值爆炸。
const maxReserveFraction = 0.99

// Arbitrageur 针对定价偏离的池子计算并执行最优套利。
//
// 对恒定乘积池使用闭式解：储备 (x, y)，k=xy，费率 f，公允价 p：
//   - 从 AMM 买入 X：Δx = x - sqrt(k*(1+f)/p)
//   - 向 AMM 卖出 X：Δx = sqrt(k*(1-f)/p) - x
//
// 闭式解只是起点，真正的盈利门槛是成交前按同一套规则取报价复核；
// 复核不通过一律放弃，绝不亏损成交。
type Arbitrageur struct {
	log *zap.Logger
}

// NewArbitrageur 创建套利者。logger 可为 nil。
func NewArbitrageur(log *zap.Logger) *Arbitrageur {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arbitrageur{log: log}
}

// ExecuteArb 寻找并执行最优套利，无利可图时返回 nil。
func (a *Arbitrageur) ExecuteArb(pool *amm.Pool, fairPrice float64, timestamp uint64) *ArbResult {
	spot := pool.SpotPrice()
	switch {
	case spot < fairPrice:
		// AMM 低估 X，从 AMM 买入
		return a.computeBuyArb(pool, fairPrice, timestamp)
	case spot > fairPrice:
		// AMM 高估 X，向 AMM 卖出
		return a.computeSellArb(pool, fairPrice, timestamp)
	default:
		return nil
	}
}

// computeBuyArb 从 AMM 买入 X（AMM 卖方），使用卖出费率。
// 最大化 profit = Δx*p - Y 支出，闭式解 Δx = x - sqrt(k*(1+f)/p)。
func (a *Arbitrageur) computeBuyArb(pool *amm.Pool, fairPrice float64, timestamp uint64) *ArbResult {
	rx, ry := pool.Reserves()
	k := rx * ry
	fee := pool.Fees().AskFee

	newX := math.Sqrt(k * (1 + fee) / fairPrice)
	amountX := rx - newX
	if amountX <= 0 {
		return nil
	}
	amountX = math.Min(amountX, rx*maxReserveFraction)

	totalY, _ := pool.QuoteSellX(amountX)
	if totalY <= 0 {
		return nil
	}
	profit := amountX*fairPrice - totalY
	if profit <= 0 {
		return nil
	}

	if _, err := pool.ExecuteSellX(amountX, timestamp); err != nil {
		a.log.Warn("arb execute failed after profitable quote",
			zap.String("pool", pool.Name),
			zap.String("side", string(amm.SideSell)),
			zap.Float64("amount_x", amountX),
			zap.Error(err))
		return nil
	}
	return &ArbResult{
		AMMName: pool.Name,
		Profit:  profit,
		Side:    amm.SideSell,
		AmountX: amountX,
		AmountY: totalY,
	}
}

// computeSellArb 向 AMM 卖出 X（AMM 买方），使用买入费率。
// 最大化 profit = Y 收入 - Δx*p，闭式解 Δx = sqrt(k*(1-f)/p) - x。
// 卖出方向无需储备上限：Δx 只会增加池子储备。
func (a *Arbitrageur) computeSellArb(pool *amm.Pool, fairPrice float64, timestamp uint64) *ArbResult {
	rx, ry := pool.Reserves()
	k := rx * ry
	fee := pool.Fees().BidFee

	newX := math.Sqrt(k * (1 - fee) / fairPrice)
	amountX := newX - rx
	if amountX <= 0 {
		return nil
	}

	yOut, _ := pool.QuoteBuyX(amountX)
	if yOut <= 0 {
		return nil
	}
	profit := yOut - amountX*fairPrice
	if profit <= 0 {
		return nil
	}

	if _, err := pool.ExecuteBuyX(amountX, timestamp); err != nil {
		a.log.Warn("arb execute failed after profitable quote",
			zap.String("pool", pool.Name),
			zap.String("side", string(amm.SideBuy)),
			zap.Float64("amount_x", amountX),
			zap.Error(err))
		return nil
	}
	return &ArbResult{
		AMMName: pool.Name,
		Profit:  profit,
		Side:    amm.SideBuy,
		AmountX: amountX,
		AmountY: yOut,
	}
}

// ArbitrageAll 依次对每个池子执行套利，收集非空结果。
// 各池储备互相独立，结果只保序、不相互影响。
func (a *Arbitrageur) ArbitrageAll(pools []*amm.Pool, fairPrice float64, timestamp uint64) []ArbResult {
	var results []ArbResult
	for _, pool := range pools {
		if r := a.ExecuteArb(pool, fairPrice, timestamp); r != nil {
			results = append(results, *r)
		}
	}
	return results
}
