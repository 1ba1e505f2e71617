package amm

import "fmt"

// bps 与比例值的换算。
const bpsDenominator = 10000.0

// FeeFromBps 把基点转成比例费率。
func FeeFromBps(bps float64) float64 {
	return bps / bpsDenominator
}

// StaticFee 固定对称费率策略。
type StaticFee struct {
	bps float64
}

// NewStaticFee 创建固定费率策略，bps 为基点。
func NewStaticFee(bps float64) *StaticFee {
	return &StaticFee{bps: bps}
}

func (s *StaticFee) Initialize(initialX, initialY float64) (FeeQuote, error) {
	return SymmetricFee(FeeFromBps(s.bps)), nil
}

func (s *StaticFee) AfterSwap(trade TradeInfo) (FeeQuote, error) {
	return SymmetricFee(FeeFromBps(s.bps)), nil
}

func (s *StaticFee) Name() string {
	return fmt.Sprintf("Static_%g", s.bps)
}

// AsymmetricFee 固定非对称费率策略，买卖两侧独立设置。
type AsymmetricFee struct {
	bidBps float64
	askBps float64
}

// NewAsymmetricFee 创建非对称费率策略，参数为基点。
func NewAsymmetricFee(bidBps, askBps float64) *AsymmetricFee {
	return &AsymmetricFee{bidBps: bidBps, askBps: askBps}
}

func (s *AsymmetricFee) quote() FeeQuote {
	return FeeQuote{BidFee: FeeFromBps(s.bidBps), AskFee: FeeFromBps(s.askBps)}
}

func (s *AsymmetricFee) Initialize(initialX, initialY float64) (FeeQuote, error) {
	return s.quote(), nil
}

func (s *AsymmetricFee) AfterSwap(trade TradeInfo) (FeeQuote, error) {
	return s.quote(), nil
}

func (s *AsymmetricFee) Name() string {
	return fmt.Sprintf("StaticAsym_%g_%g", s.bidBps, s.askBps)
}
