package types

import (
	"time"

	"github.com/google/uuid"
)

// PointsTransaction records every points grant or deduction. Positive for
// earning, negative for deduction.
type PointsTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Points          int       `gorm:"column:points;not null" json:"points"`
	TransactionType string    `gorm:"column:transaction_type;not null;index" json:"transaction_type"`
	Description     string    `gorm:"column:description" json:"description"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}

func (PointsTransaction) TableName() string { return "points_transaction" }
