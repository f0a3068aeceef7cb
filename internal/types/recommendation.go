package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RecommendationCourse      = "course"
	RecommendationLesson      = "lesson"
	RecommendationInstructor  = "instructor"
	RecommendationCategory    = "category"
	RecommendationSimilarUser = "similar_user"
)

const (
	AlgorithmCollaborative  = "collaborative"
	AlgorithmContentBased   = "content_based"
	AlgorithmPopularity     = "popularity"
	AlgorithmKnowledgeBased = "knowledge_based"
	AlgorithmHybrid         = "hybrid"
)

type Recommendation struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_recommendation_user_generated" json:"user_id"`
	User               *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RecommendationType string         `gorm:"column:recommendation_type;not null;default:course;index" json:"recommendation_type"`
	CourseID           *uuid.UUID     `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Course             *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	TargetItemID       *uuid.UUID     `gorm:"type:uuid" json:"target_item_id,omitempty"`
	AlgorithmUsed      string         `gorm:"column:algorithm_used;not null;index" json:"algorithm_used"`
	Score              float64        `gorm:"column:score;not null;index" json:"score"`
	Reason             string         `gorm:"column:reason" json:"reason"`
	ReasonData         datatypes.JSON `gorm:"column:reason_data;type:jsonb" json:"reason_data,omitempty"`
	GeneratedAt        time.Time      `gorm:"not null;index:idx_recommendation_user_generated" json:"generated_at"`
	ExpiresAt          time.Time      `gorm:"not null;index" json:"expires_at"`
	IsExpired          bool           `gorm:"column:is_expired;not null;default:false;index" json:"is_expired"`
	IsClicked          bool           `gorm:"column:is_clicked;not null;default:false" json:"is_clicked"`
	ClickedAt          *time.Time     `json:"clicked_at,omitempty"`
	IsDismissed        bool           `gorm:"column:is_dismissed;not null;default:false" json:"is_dismissed"`
	DismissedAt        *time.Time     `json:"dismissed_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (Recommendation) TableName() string { return "recommendation" }

// Active reports whether the recommendation can still be acted on.
func (r *Recommendation) Active(now time.Time) bool {
	return !r.IsExpired && !r.IsDismissed && r.ExpiresAt.After(now)
}
