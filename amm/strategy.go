package amm

import (
	"fmt"
	"strconv"
	"strings"
)

// FeeStrategy 定价策略契约：池子只向策略询问费率，储备与报价
// 全部由池子自身维护。策略不得直接改动储备。
type FeeStrategy interface {
	// Initialize 在池子注入初始储备后调用一次，返回开盘费率。
	Initialize(initialX, initialY float64) (FeeQuote, error)
	// AfterSwap 在每笔成交后调用，可根据成交信息调整费率。
	AfterSwap(trade TradeInfo) (FeeQuote, error)
	// Name 策略自报名称，仅用于展示；引擎侧的标识由引擎分配。
	Name() string
}

// BuildStrategy 按名称构造内置策略，供 cmd 层使用。
// 支持的形式：
//
//	static:<bps>        固定对称费率
//	asym:<bid>:<ask>    固定非对称费率（bps）
//	vol:<bps>           波动率响应费率，base 为 bps
func BuildStrategy(spec string) (FeeStrategy, error) {
	parts := strings.Split(spec, ":")
	switch parts[0] {
	case "static":
		if len(parts) != 2 {
			return nil, fmt.Errorf("usage: static:<bps>")
		}
		bps, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse bps: %w", err)
		}
		return NewStaticFee(bps), nil
	case "asym":
		if len(parts) != 3 {
			return nil, fmt.Errorf("usage: asym:<bid_bps>:<ask_bps>")
		}
		bid, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse bid bps: %w", err)
		}
		ask, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ask bps: %w", err)
		}
		return NewAsymmetricFee(bid, ask), nil
	case "vol":
		if len(parts) != 2 {
			return nil, fmt.Errorf("usage: vol:<base_bps>")
		}
		bps, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse bps: %w", err)
		}
		return NewVolResponsiveFee(VolResponsiveConfig{BaseFeeBps: bps}), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", spec)
	}
}
