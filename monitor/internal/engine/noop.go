package engine

// NopNotifier discards every alert. Used when Telegram is not configured so
// the pipeline still runs end to end.
type NopNotifier struct{}

func (NopNotifier) MilestoneAlert(address, symbol string, multiple int, initialPrice, currentPrice float64) error {
	return nil
}

func (NopNotifier) RiskAlert(address, symbol, level string, score int, reasons []string, liquidityUSD float64) error {
	return nil
}
