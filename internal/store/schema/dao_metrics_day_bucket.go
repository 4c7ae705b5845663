package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// DaoMetricsDayBucket represents the dao_metrics_day_buckets table - daily OHLC of a supply metric
type DaoMetricsDayBucket struct {
	// Date is the UTC midnight of the day
	Date time.Time `gorm:"column:date;primaryKey;type:timestamptz"`
	// DaoID is the DAO the metric belongs to
	DaoID domain.DaoID `gorm:"column:dao_id;primaryKey;type:text"`
	// TokenID is the address of the token
	TokenID string `gorm:"column:token_id;primaryKey;type:text"`
	// MetricType is the kind of supply
	MetricType domain.MetricType `gorm:"column:metric_type;primaryKey;type:text"`
	Open       decimal.Decimal   `gorm:"column:open;not null;type:numeric(78,0)"`
	Close      decimal.Decimal   `gorm:"column:close;not null;type:numeric(78,0)"`
	Low        decimal.Decimal   `gorm:"column:low;not null;type:numeric(78,0)"`
	High       decimal.Decimal   `gorm:"column:high;not null;type:numeric(78,0)"`
	Average    decimal.Decimal   `gorm:"column:average;not null;type:numeric(78,0)"`
	// Volume is the sum of absolute changes during the day
	Volume decimal.Decimal `gorm:"column:volume;not null;type:numeric(78,0)"`
	// Count is the number of changes during the day
	Count int64 `gorm:"column:count;not null"`
	// LastUpdate is the timestamp of the latest change
	LastUpdate time.Time `gorm:"column:last_update;not null;type:timestamptz"`
}

// TableName specifies the table name for the DaoMetricsDayBucket model
func (DaoMetricsDayBucket) TableName() string {
	return "dao_metrics_day_buckets"
}
