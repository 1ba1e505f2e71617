package competition

// PoolState snapshot of an AMM's state for scoring.
type PoolState struct {
	Name     string
	ReserveX float64
	ReserveY float64
}

// Value marks the state at a fair price, in Y terms.
func (s PoolState) Value(fairPrice float64) float64 {
	return s.ReserveX*fairPrice + s.ReserveY
}

// PnL measures the total value change between two states, in Y terms:
//
//	(X_final*p_final + Y_final) - (X_init*p_init + Y_init)
func PnL(initial, final PoolState, initialFairPrice, finalFairPrice float64) float64 {
	return final.Value(finalFairPrice) - initial.Value(initialFairPrice)
}

// Return converts absolute PnL to a fractional return (0.1 = 10%).
// Returns 0 when the initial value is 0.
func Return(pnl, initialValue float64) float64 {
	if initialValue == 0 {
		return 0
	}
	return pnl / initialValue
}
