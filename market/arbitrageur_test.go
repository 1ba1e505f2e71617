package market

import (
	"fmt"
	"math"
	"testing"

	"amm-match-go/amm"
)

func newArbPool(t *testing.T, bps float64, x, y float64) *amm.Pool {
	t.Helper()
	p := amm.NewPool(amm.NewStaticFee(bps), x, y)
	p.Name = "pool"
	if err := p.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return p
}

// 闭式解符号检查：现货价 1.0、费率 25bps
func TestClosedFormSizes(t *testing.T) {
	k := 1000.0 * 1000.0
	fee := 0.0025

	// 公允价高于现货：应从 AMM 买入
	buySize := 1000 - math.Sqrt(k*(1+fee)/1.1)
	if buySize <= 0 {
		t.Fatalf("buy size = %v, want > 0", buySize)
	}

	// 公允价低于现货：应向 AMM 卖出
	sellSize := math.Sqrt(k*(1-fee)/0.9) - 1000
	if sellSize <= 0 {
		t.Fatalf("sell size = %v, want > 0", sellSize)
	}
}

func TestNoTradeAtFairPrice(t *testing.T) {
	p := newArbPool(t, 25, 1000, 1000)
	a := NewArbitrageur(nil)
	if res := a.ExecuteArb(p, 1.0, 0); res != nil {
		t.Fatalf("expected no trade at spot == fair, got %+v", res)
	}
	x, y := p.Reserves()
	if x != 1000 || y != 1000 {
		t.Fatalf("reserves mutated: (%v, %v)", x, y)
	}
}

func TestBuyArbWhenUnderpriced(t *testing.T) {
	p := newArbPool(t, 25, 1000, 1000)
	a := NewArbitrageur(nil)

	res := a.ExecuteArb(p, 1.1, 5)
	if res == nil {
		t.Fatal("expected arbitrage at fair 1.1")
	}
	if res.Side != amm.SideSell {
		t.Fatalf("side = %v, want sell (AMM sells X)", res.Side)
	}
	if res.Profit <= 0 {
		t.Fatalf("profit = %v, want > 0", res.Profit)
	}
	if res.AMMName != "pool" {
		t.Fatalf("amm name = %q", res.AMMName)
	}
	// 实现的收益应与复核报价一致：profit = Δx*p - Y支出
	if math.Abs(res.Profit-(res.AmountX*1.1-res.AmountY)) > 1e-9 {
		t.Fatalf("profit inconsistent with amounts: %+v", res)
	}
	x, _ := p.Reserves()
	if x >= 1000 {
		t.Fatalf("x reserves should shrink, got %v", x)
	}
}

func TestSellArbWhenOverpriced(t *testing.T) {
	p := newArbPool(t, 25, 1000, 1000)
	a := NewArbitrageur(nil)

	res := a.ExecuteArb(p, 0.9, 5)
	if res == nil {
		t.Fatal("expected arbitrage at fair 0.9")
	}
	if res.Side != amm.SideBuy {
		t.Fatalf("side = %v, want buy (AMM buys X)", res.Side)
	}
	if res.Profit <= 0 {
		t.Fatalf("profit = %v, want > 0", res.Profit)
	}
	if math.Abs(res.Profit-(res.AmountY-res.AmountX*0.9)) > 1e-9 {
		t.Fatalf("profit inconsistent with amounts: %+v", res)
	}
	x, _ := p.Reserves()
	if x <= 1000 {
		t.Fatalf("x reserves should grow, got %v", x)
	}
}

func TestBuyArbClampedAt99Percent(t *testing.T) {
	p := newArbPool(t, 25, 1000, 1000)
	a := NewArbitrageur(nil)

	// 极端公允价会要求吃掉几乎全部储备
	res := a.ExecuteArb(p, 1e6, 0)
	if res == nil {
		t.Fatal("expected arbitrage at extreme fair price")
	}
	if res.AmountX > 1000*0.99+1e-9 {
		t.Fatalf("amount %v exceeds 99%% of reserves", res.AmountX)
	}
}

func TestNoTradeWhenFeeEatsEdge(t *testing.T) {
	// 错价 10bps，但费率 50bps：闭式解为负，不应出手
	p := newArbPool(t, 50, 1000, 1000)
	a := NewArbitrageur(nil)

	if res := a.ExecuteArb(p, 1.001, 0); res != nil {
		t.Fatalf("expected no trade, got %+v", res)
	}
	if res := a.ExecuteArb(p, 0.999, 0); res != nil {
		t.Fatalf("expected no trade, got %+v", res)
	}
	x, y := p.Reserves()
	if x != 1000 || y != 1000 {
		t.Fatalf("reserves mutated: (%v, %v)", x, y)
	}
}

func TestArbNeverRealizesLoss(t *testing.T) {
	fees := []float64{0, 10, 25, 50, 100}
	fairs := []float64{0.5, 0.9, 0.999, 1.001, 1.1, 2.0}
	a := NewArbitrageur(nil)
	for _, bps := range fees {
		for _, fair := range fairs {
			t.Run(fmt.Sprintf("fee%g_fair%g", bps, fair), func(t *testing.T) {
				p := newArbPool(t, bps, 1000, 1000)
				if res := a.ExecuteArb(p, fair, 0); res != nil && res.Profit <= 0 {
					t.Fatalf("realized non-positive profit %v", res.Profit)
				}
			})
		}
	}
}

// brokenStrategy 初始化正常但成交后报错，模拟合约执行失败。
type brokenStrategy struct{}

func (brokenStrategy) Initialize(x, y float64) (amm.FeeQuote, error) {
	return amm.SymmetricFee(0.0025), nil
}
func (brokenStrategy) AfterSwap(amm.TradeInfo) (amm.FeeQuote, error) {
	return amm.FeeQuote{}, fmt.Errorf("contract revert")
}
func (brokenStrategy) Name() string { return "broken" }

func TestExecutionFailureReturnsEmpty(t *testing.T) {
	p := amm.NewPool(brokenStrategy{}, 1000, 1000)
	p.Name = "pool"
	if err := p.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	a := NewArbitrageur(nil)
	if res := a.ExecuteArb(p, 1.1, 0); res != nil {
		t.Fatalf("expected empty result on execution failure, got %+v", res)
	}
}

func TestArbitrageAll(t *testing.T) {
	cheap := newArbPool(t, 25, 1000, 1000)
	cheap.Name = "cheap"
	fairly := newArbPool(t, 25, 1000, 1000)
	fairly.Name = "fair"
	// fair 池现货价恰好等于公允价
	a := NewArbitrageur(nil)

	results := a.ArbitrageAll([]*amm.Pool{cheap, fairly}, 1.0, 0)
	if len(results) != 0 {
		t.Fatalf("both at fair: expected no results, got %d", len(results))
	}

	results = a.ArbitrageAll([]*amm.Pool{cheap, fairly}, 1.2, 1)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].AMMName != "cheap" || results[1].AMMName != "fair" {
		t.Fatalf("order not preserved: %+v", results)
	}
}
