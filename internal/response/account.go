package response

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TablePosition  = "position"
	TableMargin    = "margin"
	TableOrder     = "order"
	TableWallet    = "wallet"
	TableExecution = "execution"
)

// Position fields are sparse on update actions; absent fields stay zero.
type Position struct {
	Account          int64           `json:"account"`
	Symbol           string          `json:"symbol"`
	Currency         string          `json:"currency"`
	Underlying       string          `json:"underlying"`
	QuoteCurrency    string          `json:"quoteCurrency"`
	Leverage         decimal.Decimal `json:"leverage"`
	CrossMargin      bool            `json:"crossMargin"`
	CurrentQty       int64           `json:"currentQty"`
	AvgEntryPrice    decimal.Decimal `json:"avgEntryPrice"`
	MarkPrice        decimal.Decimal `json:"markPrice"`
	LiquidationPrice decimal.Decimal `json:"liquidationPrice"`
	UnrealisedPnl    int64           `json:"unrealisedPnl"`
	RealisedPnl      int64           `json:"realisedPnl"`
	IsOpen           bool            `json:"isOpen"`
	Timestamp        time.Time       `json:"timestamp"`
}

type Margin struct {
	Account         int64           `json:"account"`
	Currency        string          `json:"currency"`
	Amount          int64           `json:"amount"`
	WalletBalance   int64           `json:"walletBalance"`
	MarginBalance   int64           `json:"marginBalance"`
	AvailableMargin int64           `json:"availableMargin"`
	RealisedPnl     int64           `json:"realisedPnl"`
	UnrealisedPnl   int64           `json:"unrealisedPnl"`
	MarginLeverage  decimal.Decimal `json:"marginLeverage"`
	Timestamp       time.Time       `json:"timestamp"`
}

type Order struct {
	OrderID      string          `json:"orderID"`
	ClOrdID      string          `json:"clOrdID"`
	Account      int64           `json:"account"`
	Symbol       string          `json:"symbol"`
	Side         string          `json:"side"`
	OrderQty     int64           `json:"orderQty"`
	Price        decimal.Decimal `json:"price"`
	StopPx       decimal.Decimal `json:"stopPx"`
	OrdType      string          `json:"ordType"`
	TimeInForce  string          `json:"timeInForce"`
	ExecInst     string          `json:"execInst"`
	OrdStatus    string          `json:"ordStatus"`
	LeavesQty    int64           `json:"leavesQty"`
	CumQty       int64           `json:"cumQty"`
	AvgPx        decimal.Decimal `json:"avgPx"`
	Text         string          `json:"text"`
	TransactTime time.Time       `json:"transactTime"`
	Timestamp    time.Time       `json:"timestamp"`
}

type Wallet struct {
	Account       int64     `json:"account"`
	Currency      string    `json:"currency"`
	Amount        int64     `json:"amount"`
	DeltaDeposit  int64     `json:"deltaDeposit"`
	DeltaWithdraw int64     `json:"deltaWithdraw"`
	Deposited     int64     `json:"deposited"`
	Withdrawn     int64     `json:"withdrawn"`
	Addr          string    `json:"addr"`
	Timestamp     time.Time `json:"timestamp"`
}

type Execution struct {
	ExecID       string          `json:"execID"`
	OrderID      string          `json:"orderID"`
	ClOrdID      string          `json:"clOrdID"`
	Account      int64           `json:"account"`
	Symbol       string          `json:"symbol"`
	Side         string          `json:"side"`
	LastQty      int64           `json:"lastQty"`
	LastPx       decimal.Decimal `json:"lastPx"`
	OrderQty     int64           `json:"orderQty"`
	Price        decimal.Decimal `json:"price"`
	ExecType     string          `json:"execType"`
	OrdType      string          `json:"ordType"`
	OrdStatus    string          `json:"ordStatus"`
	Commission   decimal.Decimal `json:"commission"`
	ExecComm     int64           `json:"execComm"`
	TransactTime time.Time       `json:"transactTime"`
	Timestamp    time.Time       `json:"timestamp"`
}
