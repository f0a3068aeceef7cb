package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RecommendationProfile is a materialized view of a user's interaction
// history, rebuilt in full on every generation run. It has no lifecycle of
// its own beyond its owning user.
type RecommendationProfile struct {
	ID                        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PreferredCategoryIDs      datatypes.JSON `gorm:"column:preferred_category_ids;type:jsonb" json:"preferred_category_ids"`
	PreferredDifficultyLevels datatypes.JSON `gorm:"column:preferred_difficulty_levels;type:jsonb" json:"preferred_difficulty_levels"`
	PreferredLearningStyles   datatypes.JSON `gorm:"column:preferred_learning_styles;type:jsonb" json:"preferred_learning_styles"`
	CompletedCourseIDs        datatypes.JSON `gorm:"column:completed_course_ids;type:jsonb" json:"completed_course_ids"`
	ViewedCourseIDs           datatypes.JSON `gorm:"column:viewed_course_ids;type:jsonb" json:"viewed_course_ids"`
	FeatureVector             datatypes.JSON `gorm:"column:feature_vector;type:jsonb" json:"feature_vector"`
	LastActiveAt              time.Time      `gorm:"column:last_active_at;not null;index" json:"last_active_at"`
	TotalLearningMinutes      int            `gorm:"column:total_learning_minutes;not null;default:0" json:"total_learning_minutes"`
	CreatedAt                 time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt                 time.Time      `gorm:"not null" json:"updated_at"`
}

func (RecommendationProfile) TableName() string { return "user_recommendation_profile" }
