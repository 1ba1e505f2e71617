package amm

// TradeSide 交易方向（以 AMM 视角）。
type TradeSide string

const (
	// SideBuy AMM 买入 X（taker 向池子卖出 X）
	SideBuy TradeSide = "buy"
	// SideSell AMM 卖出 X（taker 从池子买入 X）
	SideSell TradeSide = "sell"
)

// FeeQuote 一组买/卖手续费率（比例值，0.0025 = 25bps）。
// BidFee 在 AMM 买入 X 时收取，AskFee 在 AMM 卖出 X 时收取。
type FeeQuote struct {
	BidFee float64
	AskFee float64
}

// SymmetricFee 构造双边相同费率的 FeeQuote。
func SymmetricFee(fee float64) FeeQuote {
	return FeeQuote{BidFee: fee, AskFee: fee}
}

// Valid 校验费率非负且小于 1。
func (q FeeQuote) Valid() bool {
	return q.BidFee >= 0 && q.AskFee >= 0 && q.BidFee < 1 && q.AskFee < 1
}

// TradeInfo 一笔已成交交易的快照，成交后立即回传给策略。
type TradeInfo struct {
	Side      TradeSide
	AmountX   float64
	AmountY   float64
	Timestamp uint64
	// 成交后的储备量
	ReserveX float64
	ReserveY float64
}

// ImpliedPrice 成交隐含价格（Y/X），零成交量时返回 0。
func (t TradeInfo) ImpliedPrice() float64 {
	if t.AmountX == 0 {
		return 0
	}
	return t.AmountY / t.AmountX
}
