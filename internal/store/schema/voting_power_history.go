package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// VotingPowerHistory represents the voting_power_history table - append-only log of DelegateVotesChanged events
type VotingPowerHistory struct {
	// ID is txHash-logIndex of the event
	ID string `gorm:"column:id;primaryKey;type:text"`
	// DaoID is the DAO the event belongs to
	DaoID domain.DaoID `gorm:"column:dao_id;not null;type:text;index:idx_voting_power_history_account,priority:1"`
	// AccountID is the delegate whose power changed
	AccountID string `gorm:"column:account_id;not null;type:text;index:idx_voting_power_history_account,priority:2"`
	// TxHash is the transaction hash
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// PreviousVotingPower is the power before the change
	PreviousVotingPower decimal.Decimal `gorm:"column:previous_voting_power;not null;type:numeric(78,0)"`
	// NewVotingPower is the power after the change
	NewVotingPower decimal.Decimal `gorm:"column:new_voting_power;not null;type:numeric(78,0)"`
	// Delta is NewVotingPower - PreviousVotingPower
	Delta decimal.Decimal `gorm:"column:delta;not null;type:numeric(78,0)"`
	// BlockNumber is the block the event was emitted in
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// Timestamp is the block timestamp
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz;index:idx_voting_power_history_account,priority:3"`
}

// TableName specifies the table name for the VotingPowerHistory model
func (VotingPowerHistory) TableName() string {
	return "voting_power_history"
}
