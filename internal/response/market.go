package response

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableTrade       = "trade"
	TableTradeBin    = "tradeBin"
	TableBook        = "orderBookL2"
	TableBook25      = "orderBookL2_25"
	TableQuote       = "quote"
	TableLiquidation = "liquidation"
	TableInstrument  = "instrument"
	TableFunding     = "funding"
)

type Trade struct {
	Timestamp       time.Time       `json:"timestamp"`
	Symbol          string          `json:"symbol"`
	Side            string          `json:"side"`
	Size            int64           `json:"size"`
	Price           decimal.Decimal `json:"price"`
	TickDirection   string          `json:"tickDirection"`
	TrdMatchID      string          `json:"trdMatchID"`
	GrossValue      int64           `json:"grossValue"`
	HomeNotional    decimal.Decimal `json:"homeNotional"`
	ForeignNotional decimal.Decimal `json:"foreignNotional"`
}

// TradeBin is an OHLCV candle from a tradeBin1m/5m/1h/1d table.
type TradeBin struct {
	Timestamp       time.Time       `json:"timestamp"`
	Symbol          string          `json:"symbol"`
	Open            decimal.Decimal `json:"open"`
	High            decimal.Decimal `json:"high"`
	Low             decimal.Decimal `json:"low"`
	Close           decimal.Decimal `json:"close"`
	Trades          int64           `json:"trades"`
	Volume          int64           `json:"volume"`
	Vwap            decimal.Decimal `json:"vwap"`
	LastSize        int64           `json:"lastSize"`
	Turnover        int64           `json:"turnover"`
	HomeNotional    decimal.Decimal `json:"homeNotional"`
	ForeignNotional decimal.Decimal `json:"foreignNotional"`
}

// BookLevel is one price level of an L2 book. Delete actions carry only Symbol, ID and Side.
type BookLevel struct {
	Symbol    string          `json:"symbol"`
	ID        int64           `json:"id"`
	Side      string          `json:"side"`
	Size      int64           `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

type Quote struct {
	Timestamp time.Time       `json:"timestamp"`
	Symbol    string          `json:"symbol"`
	BidSize   int64           `json:"bidSize"`
	BidPrice  decimal.Decimal `json:"bidPrice"`
	AskPrice  decimal.Decimal `json:"askPrice"`
	AskSize   int64           `json:"askSize"`
}

type Liquidation struct {
	OrderID   string          `json:"orderID"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	LeavesQty int64           `json:"leavesQty"`
}

type Instrument struct {
	Symbol           string          `json:"symbol"`
	RootSymbol       string          `json:"rootSymbol"`
	State            string          `json:"state"`
	Typ              string          `json:"typ"`
	TickSize         decimal.Decimal `json:"tickSize"`
	LastPrice        decimal.Decimal `json:"lastPrice"`
	MarkPrice        decimal.Decimal `json:"markPrice"`
	IndexPrice       decimal.Decimal `json:"indexPrice"`
	FairPrice        decimal.Decimal `json:"fairPrice"`
	FundingRate      decimal.Decimal `json:"fundingRate"`
	OpenInterest     int64           `json:"openInterest"`
	Volume24h        int64           `json:"volume24h"`
	Turnover24h      int64           `json:"turnover24h"`
	FundingTimestamp time.Time       `json:"fundingTimestamp"`
	Timestamp        time.Time       `json:"timestamp"`
}

type Funding struct {
	Timestamp        time.Time       `json:"timestamp"`
	Symbol           string          `json:"symbol"`
	FundingInterval  time.Time       `json:"fundingInterval"`
	FundingRate      decimal.Decimal `json:"fundingRate"`
	FundingRateDaily decimal.Decimal `json:"fundingRateDaily"`
}
