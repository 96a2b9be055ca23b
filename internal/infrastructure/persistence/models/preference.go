package models

import "time"

// PreferenceModel is one row of the preferences table
type PreferenceModel struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for gorm
func (PreferenceModel) TableName() string {
	return "preferences"
}
