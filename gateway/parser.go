package gateway

import (
	"encoding/json"
)

// AggTrade 提取 aggTrade 消息的核心字段。
type AggTrade struct {
	Symbol string      `json:"s"`
	Price  json.Number `json:"p"`
}

// ParseAggTradePrice 解析 aggTrade 消息并返回成交价。
func ParseAggTradePrice(raw []byte) (float64, error) {
	var trade AggTrade
	if err := json.Unmarshal(raw, &trade); err != nil {
		return 0, err
	}
	return trade.Price.Float64()
}
