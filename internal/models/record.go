package models

import "time"

// Record is a single catalog entry. IDs are assigned by the store and grow
// monotonically; CreatedAt is set at insertion and never changes afterwards.
type Record struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt   time.Time `gorm:"index;autoCreateTime" json:"created_at"`
}

// TableName pins the table name regardless of gorm's pluralisation rules.
func (Record) TableName() string { return "records" }
