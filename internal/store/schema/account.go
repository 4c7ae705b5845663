package schema

import "time"

// Account represents the accounts table - every address seen in a governance event
type Account struct {
	// ID is the checksummed address of the account
	ID string `gorm:"column:id;primaryKey;type:text"`
	// CreatedAt is the timestamp when the account was first seen
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}
