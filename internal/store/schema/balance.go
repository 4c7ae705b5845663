package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance represents the account_balances table - token balance per account
type AccountBalance struct {
	// AccountID is the address holding the balance
	AccountID string `gorm:"column:account_id;primaryKey;type:text"`
	// TokenID is the address of the governance token
	TokenID string `gorm:"column:token_id;primaryKey;type:text"`
	// Balance is the raw token amount; sink addresses (mint/burn) go negative
	Balance decimal.Decimal `gorm:"column:balance;not null;type:numeric(78,0)"`
	// UpdatedAt is the timestamp when this balance was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the AccountBalance model
func (AccountBalance) TableName() string {
	return "account_balances"
}
