package amm

import "fmt"

// maxFeeRate 池子对策略返回费率的硬上限（1000 bps）。
const maxFeeRate = 0.10

// Pool 恒定乘积做市池。储备、报价、成交与手续费记账都在池内完成，
// 费率由注入的 FeeStrategy 决定，每笔成交后策略可以重新定价。
//
// 手续费以计价资产 Y 收取：AMM 卖出 X 时向 taker 加收，买入 X 时
// 从付出的 Y 中扣留。累计手续费单独记账，不回流进储备。
type Pool struct {
	// Name 由引擎分配的标识，聚合结果时使用；不取策略自报的名称。
	Name string

	strategy FeeStrategy
	x        float64
	y        float64
	fees     FeeQuote
	feeX     float64
	feeY     float64

	initialized bool
}

// NewPool 用初始储备与策略创建池子。
func NewPool(strategy FeeStrategy, initialX, initialY float64) *Pool {
	return &Pool{strategy: strategy, x: initialX, y: initialY}
}

// Initialize 执行策略初始化并采纳开盘费率。失败对整个模拟是致命的。
func (p *Pool) Initialize() error {
	if p.initialized {
		return fmt.Errorf("pool %s: already initialized", p.Name)
	}
	if p.x <= 0 || p.y <= 0 {
		return fmt.Errorf("pool %s: non-positive initial reserves (%g, %g)", p.Name, p.x, p.y)
	}
	quote, err := p.strategy.Initialize(p.x, p.y)
	if err != nil {
		return fmt.Errorf("pool %s: strategy initialize: %w", p.Name, err)
	}
	if err := p.adoptFees(quote); err != nil {
		return err
	}
	p.initialized = true
	return nil
}

// Strategy 返回池子包装的策略。
func (p *Pool) Strategy() FeeStrategy { return p.strategy }

// Reserves 当前储备 (x, y)。
func (p *Pool) Reserves() (float64, float64) { return p.x, p.y }

// Fees 当前费率。
func (p *Pool) Fees() FeeQuote { return p.fees }

// SpotPrice 现货价 y/x。
func (p *Pool) SpotPrice() float64 { return p.y / p.x }

// AccumulatedFees 累计手续费 (feeX, feeY)。恒定乘积池只在 Y 侧收费，
// feeX 为其他池型保留。
func (p *Pool) AccumulatedFees() (float64, float64) { return p.feeX, p.feeY }

// QuoteSellX 预览 AMM 卖出 amountX 的 X：返回 taker 需支付的 Y 总额
// （含手续费）与手续费部分。不改动任何状态。数量非法时返回 (0, 0)。
func (p *Pool) QuoteSellX(amountX float64) (float64, float64) {
	if amountX <= 0 || amountX >= p.x {
		return 0, 0
	}
	k := p.x * p.y
	yNeeded := k/(p.x-amountX) - p.y
	fee := yNeeded * p.fees.AskFee
	return yNeeded + fee, fee
}

// QuoteBuyX 预览 AMM 买入 amountX 的 X：返回 taker 到手的 Y（已扣手续费）
// 与手续费部分。不改动任何状态。数量非法时返回 (0, 0)。
func (p *Pool) QuoteBuyX(amountX float64) (float64, float64) {
	if amountX <= 0 {
		return 0, 0
	}
	k := p.x * p.y
	yGross := p.y - k/(p.x+amountX)
	fee := yGross * p.fees.BidFee
	return yGross - fee, fee
}

// ExecuteSellX AMM 卖出 amountX 的 X，更新储备与累计手续费，
// 成交后回调策略调整费率。与同尺寸的 QuoteSellX 结果一致。
func (p *Pool) ExecuteSellX(amountX float64, timestamp uint64) (TradeInfo, error) {
	if !p.initialized {
		return TradeInfo{}, fmt.Errorf("pool %s: not initialized", p.Name)
	}
	if amountX <= 0 || amountX >= p.x {
		return TradeInfo{}, fmt.Errorf("pool %s: invalid sell amount %g (x=%g)", p.Name, amountX, p.x)
	}
	k := p.x * p.y
	yNeeded := k/(p.x-amountX) - p.y
	fee := yNeeded * p.fees.AskFee

	p.x -= amountX
	p.y += yNeeded
	p.feeY += fee

	trade := TradeInfo{
		Side:      SideSell,
		AmountX:   amountX,
		AmountY:   yNeeded + fee,
		Timestamp: timestamp,
		ReserveX:  p.x,
		ReserveY:  p.y,
	}
	if err := p.afterSwap(trade); err != nil {
		return TradeInfo{}, err
	}
	return trade, nil
}

// ExecuteBuyX AMM 买入 amountX 的 X，付出 Y。与 QuoteBuyX 结果一致。
func (p *Pool) ExecuteBuyX(amountX float64, timestamp uint64) (TradeInfo, error) {
	if !p.initialized {
		return TradeInfo{}, fmt.Errorf("pool %s: not initialized", p.Name)
	}
	if amountX <= 0 {
		return TradeInfo{}, fmt.Errorf("pool %s: invalid buy amount %g", p.Name, amountX)
	}
	k := p.x * p.y
	yGross := p.y - k/(p.x+amountX)
	fee := yGross * p.fees.BidFee

	p.x += amountX
	p.y -= yGross
	p.feeY += fee

	trade := TradeInfo{
		Side:      SideBuy,
		AmountX:   amountX,
		AmountY:   yGross - fee,
		Timestamp: timestamp,
		ReserveX:  p.x,
		ReserveY:  p.y,
	}
	if err := p.afterSwap(trade); err != nil {
		return TradeInfo{}, err
	}
	return trade, nil
}

func (p *Pool) afterSwap(trade TradeInfo) error {
	quote, err := p.strategy.AfterSwap(trade)
	if err != nil {
		return fmt.Errorf("pool %s: strategy after swap: %w", p.Name, err)
	}
	return p.adoptFees(quote)
}

func (p *Pool) adoptFees(quote FeeQuote) error {
	if !quote.Valid() {
		return fmt.Errorf("pool %s: invalid fee quote (bid=%g, ask=%g)", p.Name, quote.BidFee, quote.AskFee)
	}
	if quote.BidFee > maxFeeRate {
		quote.BidFee = maxFeeRate
	}
	if quote.AskFee > maxFeeRate {
		quote.AskFee = maxFeeRate
	}
	p.fees = quote
	return nil
}
