package models

import "time"

// StoreEntry is one row of the key-value table behind the gorm store.
type StoreEntry struct {
	Key       string    `gorm:"column:store_key;primaryKey;size:255"`
	Value     string    `gorm:"column:store_value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (StoreEntry) TableName() string {
	return "store_entries"
}
