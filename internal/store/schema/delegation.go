package schema

import (
	"time"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Delegation represents the delegations table - append-only log of DelegateChanged events
type Delegation struct {
	// ID is txHash-logIndex of the event
	ID string `gorm:"column:id;primaryKey;type:text"`
	// DaoID is the DAO the event belongs to
	DaoID domain.DaoID `gorm:"column:dao_id;not null;type:text;index:idx_delegations_dao_timestamp,priority:1"`
	// TxHash is the transaction hash
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// Delegator is the account changing its delegate
	Delegator string `gorm:"column:delegator;not null;type:text;index"`
	// Delegate is the new delegate
	Delegate string `gorm:"column:delegate;not null;type:text;index"`
	// PreviousDelegate is the delegate before the change
	PreviousDelegate string `gorm:"column:previous_delegate;not null;type:text"`
	// BlockNumber is the block the event was emitted in
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// Timestamp is the block timestamp
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz;index:idx_delegations_dao_timestamp,priority:2"`
}

// TableName specifies the table name for the Delegation model
func (Delegation) TableName() string {
	return "delegations"
}
