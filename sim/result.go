package sim

import "amm-match-go/amm"

// Reserves 一组储备量。
type Reserves struct {
	X float64
	Y float64
}

// StepResult 单个 tick 的快照，生成后不再修改。
type StepResult struct {
	Timestamp  uint64
	FairPrice  float64
	SpotPrices map[string]float64
	PnLs       map[string]float64
	Fees       map[string]amm.FeeQuote
}

// Result 一次完整模拟的结果，运行结束时一次性生成，只读。
// Strategies 保存引擎分配的名称顺序，输出时按该顺序遍历各 map。
type Result struct {
	Seed       int64
	Strategies []string

	// PnL 终局盈亏：(终局储备+累计手续费) 按终局公允价计值，
	// 减去初始储备按初始公允价计值
	PnL map[string]float64
	// InstantaneousMarkouts 累计瞬时 markout：
	// 被套利抽走的利润取负，加上散户成交相对公允价的盈亏
	InstantaneousMarkouts map[string]float64

	InitialFairPrice float64
	InitialReserves  map[string]Reserves

	Steps []StepResult

	// 累计成交量（以 Y 计价）
	ArbVolumeY    map[string]float64
	RetailVolumeY map[string]float64
}
