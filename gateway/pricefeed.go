// Package gateway 提供行情接入。模拟核心不依赖网络，这里的 websocket
// 价格流只用于标定场景：用真实成交价代替 GBM 驱动公允价。
package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"amm-match-go/market"
)

// BinanceFuturesWSEndpoint 默认行情端点。
const BinanceFuturesWSEndpoint = "wss://fstream.binance.com"

// PriceFeed 订阅单个交易对的 aggTrade 流，把最新成交价暴露为
// market.PriceSource。Step 阻塞等待下一笔成交。
type PriceFeed struct {
	BaseEndpoint string
	Dialer       *websocket.Dialer

	symbol  string
	updates chan float64

	mu   sync.RWMutex
	last float64
}

var _ market.PriceSource = (*PriceFeed)(nil)

// NewPriceFeed 创建价格流。
func NewPriceFeed(symbol string) *PriceFeed {
	return &PriceFeed{
		BaseEndpoint: BinanceFuturesWSEndpoint,
		Dialer:       websocket.DefaultDialer,
		symbol:       strings.ToLower(symbol),
		updates:      make(chan float64, 64),
	}
}

// Run 建立连接并持续读取，直到 ctx 取消或连接出错。
func (f *PriceFeed) Run(ctx context.Context) error {
	if f.symbol == "" {
		return fmt.Errorf("symbol required")
	}
	base, err := url.Parse(f.BaseEndpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint %s: %w", f.BaseEndpoint, err)
	}
	base.Path = "/ws/" + f.symbol + "@aggTrade"
	conn, _, err := f.Dialer.DialContext(ctx, base.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", base.String(), err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		price, err := ParseAggTradePrice(message)
		if err != nil || price <= 0 {
			continue
		}
		f.mu.Lock()
		f.last = price
		f.mu.Unlock()
		select {
		case f.updates <- price:
		default:
			// 消费方跟不上时丢弃旧 tick，只保最新价可读
		}
	}
}

// CurrentPrice 返回最近一次成交价，尚无数据时为 0。
func (f *PriceFeed) CurrentPrice() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last
}

// Step 阻塞到下一笔成交并返回其价格。
func (f *PriceFeed) Step() float64 {
	return <-f.updates
}
