package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DateString is the canonical day format used by the analytics tables.
// Dates are stored as ISO strings so range scans stay portable across
// MySQL and the SQLite databases used in tests.
const DateString = "2006-01-02"

func FormatDate(t time.Time) string {
	return t.Format(DateString)
}
