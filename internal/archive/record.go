package archive

import (
	"time"

	"bmxfeed/internal/response"

	"github.com/shopspring/decimal"
)

// TradeRecord is the persisted form of a trade row.
type TradeRecord struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	TrdMatchID      string          `gorm:"size:64;uniqueIndex"`
	Symbol          string          `gorm:"size:32;index:idx_bmx_trades_symbol_time"`
	Side            string          `gorm:"size:8"`
	Size            int64           `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:numeric(24,8)"`
	GrossValue      int64
	HomeNotional    decimal.Decimal `gorm:"type:numeric(32,12)"`
	ForeignNotional decimal.Decimal `gorm:"type:numeric(32,12)"`
	TickDirection   string          `gorm:"size:16"`
	Action          string          `gorm:"size:8"`
	TradedAt        time.Time       `gorm:"index:idx_bmx_trades_symbol_time"`
	ArchivedAt      time.Time
}

func (TradeRecord) TableName() string {
	return "bmx_trades"
}

// FromTrade maps a published trade row.
func FromTrade(row response.Row[response.Trade], now time.Time) TradeRecord {
	t := row.Data
	return TradeRecord{
		TrdMatchID:      t.TrdMatchID,
		Symbol:          t.Symbol,
		Side:            t.Side,
		Size:            t.Size,
		Price:           t.Price,
		GrossValue:      t.GrossValue,
		HomeNotional:    t.HomeNotional,
		ForeignNotional: t.ForeignNotional,
		TickDirection:   t.TickDirection,
		Action:          row.Action.String(),
		TradedAt:        t.Timestamp.UTC(),
		ArchivedAt:      now.UTC(),
	}
}
