package models

import "time"

// CartSnapshot stores the serialized cart blob for one storage key.
type CartSnapshot struct {
	StorageKey string    `gorm:"column:storage_key;primaryKey;size:128"`
	Payload    string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
