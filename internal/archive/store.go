package archive

import (
	"context"

	"bmxfeed/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists trade batches.
type Store interface {
	SaveTrades(ctx context.Context, records []TradeRecord) error
}

var _ Store = (*GormStore)(nil)

// GormStore writes trades with gorm. Duplicate match ids are ignored, so a
// replayed session can be archived twice.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the trade table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&TradeRecord{}); err != nil {
		return errors.Wrap(err, "migrate trades")
	}
	return nil
}

func (s *GormStore) SaveTrades(ctx context.Context, records []TradeRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "trd_match_id"}}, DoNothing: true}).
		CreateInBatches(records, len(records)).Error
	if err != nil {
		return errors.Wrapf(err, "save %d trades", len(records))
	}
	return nil
}
