package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// ProposalOnchain represents the proposals_onchain table - proposals created on the governor contract
type ProposalOnchain struct {
	// ID is the proposal id assigned by the governor (uint256 in base 10)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// DaoID is the DAO the proposal belongs to
	DaoID domain.DaoID `gorm:"column:dao_id;primaryKey;type:text;index:idx_proposals_dao_timestamp,priority:1"`
	// TxHash is the hash of the creating transaction
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// Proposer is the address that created the proposal
	Proposer string `gorm:"column:proposer;not null;type:text;index"`
	// Targets, Values, Signatures and Calldatas are the proposal actions as JSON arrays
	Targets    datatypes.JSON `gorm:"column:targets;type:jsonb"`
	Values     datatypes.JSON `gorm:"column:values;type:jsonb"`
	Signatures datatypes.JSON `gorm:"column:signatures;type:jsonb"`
	Calldatas  datatypes.JSON `gorm:"column:calldatas;type:jsonb"`
	// StartBlock is the block voting opens at
	StartBlock uint64 `gorm:"column:start_block;not null"`
	// EndBlock is the block voting closes at
	EndBlock uint64 `gorm:"column:end_block;not null"`
	// Description is the proposal text
	Description string `gorm:"column:description;not null;type:text;default:''"`
	// Status is the last persisted status; open statuses are recomputed when read
	Status domain.ProposalStatus `gorm:"column:status;not null;type:text"`
	// ForVotes, AgainstVotes and AbstainVotes are the vote tallies
	ForVotes     decimal.Decimal `gorm:"column:for_votes;not null;type:numeric(78,0)"`
	AgainstVotes decimal.Decimal `gorm:"column:against_votes;not null;type:numeric(78,0)"`
	AbstainVotes decimal.Decimal `gorm:"column:abstain_votes;not null;type:numeric(78,0)"`
	// Timestamp is the block timestamp of creation
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz;index:idx_proposals_dao_timestamp,priority:2"`
}

// TableName specifies the table name for the ProposalOnchain model
func (ProposalOnchain) TableName() string {
	return "proposals_onchain"
}

// Tally returns the vote totals of the proposal
func (p *ProposalOnchain) Tally() domain.VoteTally {
	return domain.VoteTally{
		For:     p.ForVotes.BigInt(),
		Against: p.AgainstVotes.BigInt(),
		Abstain: p.AbstainVotes.BigInt(),
	}
}
