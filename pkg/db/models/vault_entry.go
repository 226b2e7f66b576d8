package models

import "time"

// VaultEntry holds one sealed value of the device key-value store.
type VaultEntry struct {
	Key       string    `gorm:"column:slot;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (VaultEntry) TableName() string { return "vault_entries" }
