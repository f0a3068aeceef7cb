package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

const (
	StyleVideo       = "video"
	StyleText        = "text"
	StyleInteractive = "interactive"
	StyleMixed       = "mixed"
)

type Course struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID            *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category              *Category      `gorm:"constraint:OnDelete:SET NULL;foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	InstructorID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Instructor            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	Title                 string         `gorm:"column:title;not null" json:"title"`
	Description           string         `gorm:"column:description" json:"description"`
	DifficultyLevel       string         `gorm:"column:difficulty_level;not null;default:beginner;index" json:"difficulty_level"`
	LearningStyle         string         `gorm:"column:learning_style;not null;default:mixed" json:"learning_style"`
	AverageRating         float64        `gorm:"column:average_rating;not null;default:0" json:"average_rating"`
	RatingCount           int            `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	EnrollmentCount       int            `gorm:"column:enrollment_count;not null;default:0" json:"enrollment_count"`
	RecentEnrollmentCount int            `gorm:"column:recent_enrollment_count;not null;default:0" json:"recent_enrollment_count"`
	IsPublished           bool           `gorm:"column:is_published;not null;default:false;index" json:"is_published"`
	IsFeatured            bool           `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	Metadata              datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt             time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// NextDifficulty returns the progression target for the knowledge-based
// rule: beginner -> intermediate -> advanced. Advanced has no next step.
func NextDifficulty(level string) string {
	switch level {
	case DifficultyBeginner:
		return DifficultyIntermediate
	case DifficultyIntermediate:
		return DifficultyAdvanced
	default:
		return ""
	}
}
