package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Transfer represents the transfers table - append-only log of token Transfer events
type Transfer struct {
	// ID is txHash-logIndex of the event
	ID string `gorm:"column:id;primaryKey;type:text"`
	// DaoID is the DAO the token governs
	DaoID domain.DaoID `gorm:"column:dao_id;not null;type:text;index:idx_transfers_dao_timestamp,priority:1"`
	// TokenID is the address of the token
	TokenID string `gorm:"column:token_id;not null;type:text"`
	// TxHash is the transaction hash
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// FromAccountID is the sender
	FromAccountID string `gorm:"column:from_account_id;not null;type:text;index"`
	// ToAccountID is the recipient
	ToAccountID string `gorm:"column:to_account_id;not null;type:text;index"`
	// Amount is the raw token amount
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(78,0)"`
	// BlockNumber is the block the event was emitted in
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// Timestamp is the block timestamp
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz;index:idx_transfers_dao_timestamp,priority:2"`
}

// TableName specifies the table name for the Transfer model
func (Transfer) TableName() string {
	return "transfers"
}
