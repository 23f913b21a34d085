package stream

import "bmxfeed/internal/response"

// Hub holds one topic per event kind. Topics are created by NewHub and never removed.
type Hub struct {
	Trades       *Topic[response.Row[response.Trade]]
	TradeBins    *Topic[response.Row[response.TradeBin]]
	Books        *Topic[response.Row[response.BookLevel]]
	Quotes       *Topic[response.Row[response.Quote]]
	Liquidations *Topic[response.Row[response.Liquidation]]
	Positions    *Topic[response.Row[response.Position]]
	Margins      *Topic[response.Row[response.Margin]]
	Orders       *Topic[response.Row[response.Order]]
	Wallets      *Topic[response.Row[response.Wallet]]
	Instruments  *Topic[response.Row[response.Instrument]]
	Executions   *Topic[response.Row[response.Execution]]
	Fundings     *Topic[response.Row[response.Funding]]

	Errors         *Topic[response.ErrorResponse]
	Subscriptions  *Topic[response.SubscribeResponse]
	Info           *Topic[response.InfoResponse]
	Authentication *Topic[response.AuthenticationResponse]
	Pongs          *Topic[response.PongResponse]

	Unhandled *Topic[response.UnhandledFrame]
}

func NewHub() *Hub {
	return &Hub{
		Trades:       NewTopic[response.Row[response.Trade]]("trades"),
		TradeBins:    NewTopic[response.Row[response.TradeBin]]("trade_bins"),
		Books:        NewTopic[response.Row[response.BookLevel]]("books"),
		Quotes:       NewTopic[response.Row[response.Quote]]("quotes"),
		Liquidations: NewTopic[response.Row[response.Liquidation]]("liquidations"),
		Positions:    NewTopic[response.Row[response.Position]]("positions"),
		Margins:      NewTopic[response.Row[response.Margin]]("margins"),
		Orders:       NewTopic[response.Row[response.Order]]("orders"),
		Wallets:      NewTopic[response.Row[response.Wallet]]("wallets"),
		Instruments:  NewTopic[response.Row[response.Instrument]]("instruments"),
		Executions:   NewTopic[response.Row[response.Execution]]("executions"),
		Fundings:     NewTopic[response.Row[response.Funding]]("fundings"),

		Errors:         NewTopic[response.ErrorResponse]("errors"),
		Subscriptions:  NewTopic[response.SubscribeResponse]("subscriptions"),
		Info:           NewTopic[response.InfoResponse]("info"),
		Authentication: NewTopic[response.AuthenticationResponse]("authentication"),
		Pongs:          NewTopic[response.PongResponse]("pongs"),

		Unhandled: NewTopic[response.UnhandledFrame]("unhandled"),
	}
}

// Matchers returns the default structured matcher chain bound to the hub, in priority order.
func (h *Hub) Matchers() []response.Matcher {
	return []response.Matcher{
		response.TradeMatcher(h.Trades),
		response.TradeBinMatcher(h.TradeBins),
		response.BookMatcher(h.Books),
		response.QuoteMatcher(h.Quotes),
		response.LiquidationMatcher(h.Liquidations),
		response.PositionMatcher(h.Positions),
		response.MarginMatcher(h.Margins),
		response.OrderMatcher(h.Orders),
		response.WalletMatcher(h.Wallets),
		response.InstrumentMatcher(h.Instruments),
		response.ExecutionMatcher(h.Executions),
		response.FundingMatcher(h.Fundings),

		response.ErrorMatcher(h.Errors),
		response.SubscribeMatcher(h.Subscriptions),
		response.InfoMatcher(h.Info),
		response.AuthenticationMatcher(h.Authentication),
	}
}

// RawMatchers returns the default raw-text matcher chain bound to the hub.
func (h *Hub) RawMatchers() []response.RawMatcher {
	return []response.RawMatcher{
		response.PongMatcher(h.Pongs),
	}
}
