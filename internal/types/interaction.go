package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	InteractionViewed     = "viewed"
	InteractionEnrolled   = "enrolled"
	InteractionCompleted  = "completed"
	InteractionRated      = "rated"
	InteractionWishlisted = "wishlisted"
	InteractionSearched   = "searched"
)

// ValidInteractionType reports whether t is one of the closed set of
// interaction types.
func ValidInteractionType(t string) bool {
	switch t {
	case InteractionViewed, InteractionEnrolled, InteractionCompleted,
		InteractionRated, InteractionWishlisted, InteractionSearched:
		return true
	}
	return false
}

// Interaction is the append-only log of user actions against courses.
// One row per (user, course, type); a repeated action of the same type
// updates the existing row (rating overwrites, occurred_at refreshes).
type Interaction struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_interaction_user_course_type;index:idx_interaction_user_type" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_interaction_user_course_type;index" json:"course_id"`
	Course           *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Type             string         `gorm:"column:type;not null;uniqueIndex:idx_interaction_user_course_type;index:idx_interaction_user_type" json:"type"`
	Rating           *int           `gorm:"column:rating" json:"rating,omitempty"`
	TimeSpentMinutes int            `gorm:"column:time_spent_minutes;not null;default:0" json:"time_spent_minutes"`
	Metadata         datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	OccurredAt       time.Time      `gorm:"not null;index" json:"occurred_at"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (Interaction) TableName() string { return "user_course_interaction" }
