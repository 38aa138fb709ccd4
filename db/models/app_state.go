package models

import "time"

// AppState is one stored state key.
type AppState struct {
	Key       string    `gorm:"column:key;primaryKey;type:text"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (AppState) TableName() string {
	return "app_state"
}
