package market

import (
	"fmt"

	"amm-match-go/amm"
)

// RoutedTrade 一笔已路由并成交的散户交易。
type RoutedTrade struct {
	AMMName  string
	AmountX  float64
	AmountY  float64
	AMMBuysX bool
}

// OrderRouter 把散户订单路由到报价最优的池子并执行。
type OrderRouter struct{}

// NewOrderRouter 创建路由器。
func NewOrderRouter() *OrderRouter {
	return &OrderRouter{}
}

// RouteOrders 逐单选择最优池执行。散户买入 X 时选 taker 付出 Y 最少的池，
// 卖出 X 时选 taker 收到 Y 最多的池。没有池子能报出有效价的订单直接丢弃；
// 报价通过但执行失败视为合约缺陷，向上传播由引擎终止整个模拟。
func (r *OrderRouter) RouteOrders(orders []Order, pools []*amm.Pool, fairPrice float64, timestamp uint64) ([]RoutedTrade, error) {
	var trades []RoutedTrade
	for _, order := range orders {
		best := -1
		bestY := 0.0
		for i, pool := range pools {
			var quoted float64
			if order.BuyX {
				quoted, _ = pool.QuoteSellX(order.Size)
			} else {
				quoted, _ = pool.QuoteBuyX(order.Size)
			}
			if quoted <= 0 {
				continue
			}
			if best < 0 {
				best = i
				bestY = quoted
				continue
			}
			if order.BuyX && quoted < bestY {
				best = i
				bestY = quoted
			} else if !order.BuyX && quoted > bestY {
				best = i
				bestY = quoted
			}
		}
		if best < 0 {
			continue
		}

		pool := pools[best]
		var (
			trade amm.TradeInfo
			err   error
		)
		if order.BuyX {
			trade, err = pool.ExecuteSellX(order.Size, timestamp)
		} else {
			trade, err = pool.ExecuteBuyX(order.Size, timestamp)
		}
		if err != nil {
			return nil, fmt.Errorf("route order (size=%g, buyX=%v): %w", order.Size, order.BuyX, err)
		}
		trades = append(trades, RoutedTrade{
			AMMName:  pool.Name,
			AmountX:  trade.AmountX,
			AmountY:  trade.AmountY,
			AMMBuysX: trade.Side == amm.SideBuy,
		})
	}
	return trades, nil
}
