package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// VoteOnchain represents the votes_onchain table - append-only log of VoteCast events
type VoteOnchain struct {
	// ID is txHash-logIndex of the event
	ID string `gorm:"column:id;primaryKey;type:text"`
	// DaoID is the DAO the vote belongs to
	DaoID domain.DaoID `gorm:"column:dao_id;not null;type:text;index:idx_votes_proposal,priority:1"`
	// ProposalID is the voted proposal
	ProposalID string `gorm:"column:proposal_id;not null;type:text;index:idx_votes_proposal,priority:2"`
	// VoterAccountID is the voter address
	VoterAccountID string `gorm:"column:voter_account_id;not null;type:text;index"`
	// TxHash is the transaction hash
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// Support is 0 against, 1 for, 2 abstain
	Support domain.VoteSupport `gorm:"column:support;not null"`
	// Weight is the voting power used
	Weight decimal.Decimal `gorm:"column:weight;not null;type:numeric(78,0)"`
	// Reason is the optional text attached to the vote
	Reason string `gorm:"column:reason;not null;type:text;default:''"`
	// Timestamp is the block timestamp
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
}

// TableName specifies the table name for the VoteOnchain model
func (VoteOnchain) TableName() string {
	return "votes_onchain"
}
