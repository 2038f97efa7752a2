package conversion

import (
	"time"
)

// Conversion represents a conversion record row in the database.
type Conversion struct {
	ID         string    `gorm:"primaryKey;type:text"`
	InputValue float64   `gorm:"type:double precision;not null"`
	FromUnit   string    `gorm:"type:text;not null"`
	ToUnit     string    `gorm:"type:text;not null"`
	Result     float64   `gorm:"type:double precision;not null"`
	Timestamp  time.Time `gorm:"not null;index:idx_conversions_timestamp"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the Conversion model.
func (Conversion) TableName() string {
	return "conversions"
}
