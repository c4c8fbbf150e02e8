package widget

// builtin returns the dashboard's panels. Market data is supplied by the
// embedding application through Register; until then each panel shows its
// empty state.
func builtin() []Widget {
	return []Widget{
		{
			ID:      SymbolSelector,
			Heading: "Symbol",
			Content: static("BTCUSDT ▾"),
		},
		{
			ID:      Liquidation,
			Heading: "Recent Liquidation",
			Content: static("No liquidation data"),
		},
		{
			ID:      TradeVolume,
			Heading: "Trade Volume",
			Content: static("Buy:  N/A", "Sell: N/A"),
		},
		{
			ID:      OrderBook,
			Heading: "Order Book Top 5",
			Content: orderBookEmpty,
		},
		{
			ID:      FundingRate,
			Heading: "Funding Rate",
			Content: static("Rate: N/A", "Time: N/A"),
		},
	}
}

func static(lines ...string) ContentFunc {
	return func(_, _ int) []string {
		return lines
	}
}

// orderBookEmpty lays bids and asks side by side when there is room.
func orderBookEmpty(width, _ int) []string {
	if width < 24 {
		return []string{"Bids: -", "Asks: -"}
	}
	return []string{"Bids        Asks", "-           -"}
}
