package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Token represents the tokens table - supply aggregates of a DAO governance token
type Token struct {
	// ID is the address of the governance token
	ID string `gorm:"column:id;primaryKey;type:text"`
	// DaoID is the DAO the token governs
	DaoID domain.DaoID `gorm:"column:dao_id;primaryKey;type:text"`
	// TotalSupply is driven by mints and burns through the sink addresses
	TotalSupply decimal.Decimal `gorm:"column:total_supply;not null;type:numeric(78,0)"`
	// DelegatedSupply is the sum of delegate voting power
	DelegatedSupply decimal.Decimal `gorm:"column:delegated_supply;not null;type:numeric(78,0)"`
	// CexSupply is held by centralized exchange addresses
	CexSupply decimal.Decimal `gorm:"column:cex_supply;not null;type:numeric(78,0)"`
	// DexSupply is held by decentralized exchange addresses
	DexSupply decimal.Decimal `gorm:"column:dex_supply;not null;type:numeric(78,0)"`
	// LendingSupply is held by lending protocol addresses
	LendingSupply decimal.Decimal `gorm:"column:lending_supply;not null;type:numeric(78,0)"`
	// Treasury is held by the DAO treasury addresses
	Treasury decimal.Decimal `gorm:"column:treasury;not null;type:numeric(78,0)"`
	// CirculatingSupply is TotalSupply - Treasury
	CirculatingSupply decimal.Decimal `gorm:"column:circulating_supply;not null;type:numeric(78,0)"`
	// ActiveSupply is the voting power of accounts that voted in the last 180 days
	ActiveSupply decimal.Decimal `gorm:"column:active_supply_180d;not null;type:numeric(78,0)"`
	// UpdatedAt is the timestamp when the aggregate was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}

// NewToken returns an aggregate with every supply at zero
func NewToken(dao domain.DaoID, tokenID string) *Token {
	return &Token{
		ID:                tokenID,
		DaoID:             dao,
		TotalSupply:       decimal.Zero,
		DelegatedSupply:   decimal.Zero,
		CexSupply:         decimal.Zero,
		DexSupply:         decimal.Zero,
		LendingSupply:     decimal.Zero,
		Treasury:          decimal.Zero,
		CirculatingSupply: decimal.Zero,
		ActiveSupply:      decimal.Zero,
	}
}
