package sim

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"amm-match-go/amm"
	"amm-match-go/market"
)

// 两类致命错误：策略/合约执行失败与非法配置。
// 任一出现都立即终止模拟，不产生部分结果，也不重试。
var (
	ErrStrategy      = errors.New("strategy execution failed")
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// 引擎分配的固定参与者名称，与策略自报名称无关，避免聚合时撞名。
const (
	SubmissionName = "submission"
	BaselineName   = "normalizer"
)

// Config 一次模拟的全部参数。
type Config struct {
	InitialX     float64
	InitialY     float64
	InitialPrice float64

	GBMMu    float64
	GBMSigma float64
	GBMDt    float64

	RetailArrivalRate float64
	RetailMeanSize    float64
	RetailSizeSigma   float64
	RetailBuyProb     float64

	NSteps int
	// Seed 为 nil 时取 0；散户流固定使用 seed+1
	Seed *int64
}

// Validate 校验配置。NSteps 为 0 合法（空跑），负数非法。
func (c Config) Validate() error {
	if c.NSteps < 0 {
		return fmt.Errorf("%w: n_steps must be >= 0, got %d", ErrInvalidConfig, c.NSteps)
	}
	if c.InitialX <= 0 || c.InitialY <= 0 {
		return fmt.Errorf("%w: initial reserves must be positive (%g, %g)", ErrInvalidConfig, c.InitialX, c.InitialY)
	}
	if c.InitialPrice <= 0 {
		return fmt.Errorf("%w: initial price must be positive, got %g", ErrInvalidConfig, c.InitialPrice)
	}
	if c.GBMSigma < 0 {
		return fmt.Errorf("%w: gbm sigma must be >= 0, got %g", ErrInvalidConfig, c.GBMSigma)
	}
	if c.GBMDt <= 0 {
		return fmt.Errorf("%w: gbm dt must be positive, got %g", ErrInvalidConfig, c.GBMDt)
	}
	if c.RetailArrivalRate < 0 || c.RetailMeanSize < 0 || c.RetailSizeSigma < 0 {
		return fmt.Errorf("%w: retail parameters must be >= 0", ErrInvalidConfig)
	}
	if c.RetailBuyProb < 0 || c.RetailBuyProb > 1 {
		return fmt.Errorf("%w: retail buy prob must be in [0, 1], got %g", ErrInvalidConfig, c.RetailBuyProb)
	}
	return nil
}

// Engine 模拟引擎：两套定价策略争夺同一条外生订单流。
//
// 每个 tick 的流程：
//  1. 公允价源前进一步产生新公允价（默认 GBM）
//  2. 套利者逐池提取利润
//  3. 散户订单到达并路由到报价最优的池子
//  4. 记录各池现货价、费率与运行中 PnL
//
// 一次 Run 独占自己的池子与随机流，不可重入；使用默认 GBM 时，
// 相同配置与种子必然复现逐位相同的结果。
type Engine struct {
	cfg   Config
	log   *zap.Logger
	price market.PriceSource
}

// NewEngine 创建引擎。logger 可为 nil。
func NewEngine(cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log}
}

// SetPriceSource 注入外部公允价来源（如实时行情流），替代默认的
// GBM 过程。来源的生命周期由调用方管理，引擎只消费 Step 与
// CurrentPrice；Run 前来源应已给出首个价格，否则初始锚点为 0。
func (e *Engine) SetPriceSource(ps market.PriceSource) {
	e.price = ps
}

// Run 运行一次完整模拟。submission 与 baseline 从相同储备起步，
// 引擎固定命名为 "submission" 与 "normalizer"。
func (e *Engine) Run(submission, baseline amm.FeeStrategy) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	var seed int64
	if e.cfg.Seed != nil {
		seed = *e.cfg.Seed
	}

	price := e.price
	if price == nil {
		price = market.NewGBMPriceProcess(e.cfg.InitialPrice, e.cfg.GBMMu, e.cfg.GBMSigma, e.cfg.GBMDt, seed)
	}
	retail := market.NewRetailTrader(e.cfg.RetailArrivalRate, e.cfg.RetailMeanSize, e.cfg.RetailSizeSigma, e.cfg.RetailBuyProb, seed+1)
	arbitrageur := market.NewArbitrageur(e.log)
	router := market.NewOrderRouter()

	pools := []*amm.Pool{
		amm.NewPool(submission, e.cfg.InitialX, e.cfg.InitialY),
		amm.NewPool(baseline, e.cfg.InitialX, e.cfg.InitialY),
	}
	names := []string{SubmissionName, BaselineName}
	for i, pool := range pools {
		pool.Name = names[i]
	}

	for _, pool := range pools {
		if err := pool.Initialize(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStrategy, err)
		}
	}

	// 初始锚点，此后不再重算
	initialFairPrice := price.CurrentPrice()
	initialReserves := make(map[string]Reserves, len(pools))
	for _, pool := range pools {
		x, y := pool.Reserves()
		initialReserves[pool.Name] = Reserves{X: x, Y: y}
	}

	markouts := make(map[string]float64, len(pools))
	arbVolumeY := make(map[string]float64, len(pools))
	retailVolumeY := make(map[string]float64, len(pools))
	for _, name := range names {
		markouts[name] = 0
		arbVolumeY[name] = 0
		retailVolumeY[name] = 0
	}

	e.log.Info("simulation start",
		zap.Int64("seed", seed),
		zap.Int("n_steps", e.cfg.NSteps),
		zap.String(SubmissionName, submission.Name()),
		zap.String(BaselineName, baseline.Name()))

	steps := make([]StepResult, 0, e.cfg.NSteps)
	for t := 0; t < e.cfg.NSteps; t++ {
		ts := uint64(t)
		fairPrice := price.Step()

		// 套利者先行：池子的 markout 就是被抽走利润的相反数
		for _, pool := range pools {
			if res := arbitrageur.ExecuteArb(pool, fairPrice, ts); res != nil {
				arbVolumeY[res.AMMName] += res.AmountY
				markouts[res.AMMName] -= res.Profit
			}
		}

		// 散户流
		orders := retail.GenerateOrders()
		trades, err := router.RouteOrders(orders, pools, fairPrice, ts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStrategy, err)
		}
		for _, trade := range trades {
			retailVolumeY[trade.AMMName] += trade.AmountY
			if trade.AMMBuysX {
				markouts[trade.AMMName] += trade.AmountX*fairPrice - trade.AmountY
			} else {
				markouts[trade.AMMName] += trade.AmountY - trade.AmountX*fairPrice
			}
		}

		steps = append(steps, captureStep(ts, fairPrice, pools, initialReserves, initialFairPrice))
	}

	// 终局 PnL 与逐步快照共用同一计值公式
	finalFairPrice := price.CurrentPrice()
	pnl := make(map[string]float64, len(pools))
	for _, pool := range pools {
		init := initialReserves[pool.Name]
		pnl[pool.Name] = poolPnL(pool, finalFairPrice, init, initialFairPrice)
	}

	return &Result{
		Seed:                  seed,
		Strategies:            names,
		PnL:                   pnl,
		InstantaneousMarkouts: markouts,
		InitialFairPrice:      initialFairPrice,
		InitialReserves:       initialReserves,
		Steps:                 steps,
		ArbVolumeY:            arbVolumeY,
		RetailVolumeY:         retailVolumeY,
	}, nil
}

// poolPnL 按公允价计值的运行中盈亏：
// (当前储备 + 累计手续费) 按 fair 计值 - 初始储备按初始公允价计值。
func poolPnL(pool *amm.Pool, fairPrice float64, init Reserves, initialFairPrice float64) float64 {
	initValue := init.X*initialFairPrice + init.Y
	x, y := pool.Reserves()
	feeX, feeY := pool.AccumulatedFees()
	current := x*fairPrice + y + feeX*fairPrice + feeY
	return current - initValue
}

func captureStep(timestamp uint64, fairPrice float64, pools []*amm.Pool, initialReserves map[string]Reserves, initialFairPrice float64) StepResult {
	step := StepResult{
		Timestamp:  timestamp,
		FairPrice:  fairPrice,
		SpotPrices: make(map[string]float64, len(pools)),
		PnLs:       make(map[string]float64, len(pools)),
		Fees:       make(map[string]amm.FeeQuote, len(pools)),
	}
	for _, pool := range pools {
		step.SpotPrices[pool.Name] = pool.SpotPrice()
		step.Fees[pool.Name] = pool.Fees()
		step.PnLs[pool.Name] = poolPnL(pool, fairPrice, initialReserves[pool.Name], initialFairPrice)
	}
	return step
}
