package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// AccountPower represents the account_powers table - delegation and voting state of an account in a DAO
type AccountPower struct {
	// AccountID is the address of the account
	AccountID string `gorm:"column:account_id;primaryKey;type:text"`
	// DaoID is the DAO the power applies to
	DaoID domain.DaoID `gorm:"column:dao_id;primaryKey;type:text;index:idx_account_powers_active,priority:1"`
	// Delegate is the address the account currently delegates to
	Delegate string `gorm:"column:delegate;not null;type:text"`
	// VotingPower is the latest voting power reported by the token
	VotingPower decimal.Decimal `gorm:"column:voting_power;not null;type:numeric(78,0)"`
	// DelegationsCount is the number of accounts delegating to this account
	DelegationsCount int64 `gorm:"column:delegations_count;not null"`
	// VotesCount is the number of votes cast
	VotesCount int64 `gorm:"column:votes_count;not null"`
	// ProposalsCount is the number of proposals created
	ProposalsCount int64 `gorm:"column:proposals_count;not null"`
	// Active is true while the last vote is within the active window
	Active bool `gorm:"column:active;not null;index:idx_account_powers_active,priority:2"`
	// LastVoteTimestamp is the timestamp of the latest vote
	LastVoteTimestamp *time.Time `gorm:"column:last_vote_timestamp;type:timestamptz"`
}

// TableName specifies the table name for the AccountPower model
func (AccountPower) TableName() string {
	return "account_powers"
}

// NewAccountPower returns a zeroed power row for the account
func NewAccountPower(dao domain.DaoID, accountID string) *AccountPower {
	return &AccountPower{
		AccountID:   accountID,
		DaoID:       dao,
		VotingPower: decimal.Zero,
	}
}
