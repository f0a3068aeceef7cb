package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	FeedbackHelpful    = "helpful"
	FeedbackNotHelpful = "not_helpful"
	FeedbackIrrelevant = "irrelevant"
	FeedbackMisleading = "misleading"
)

func ValidFeedbackType(t string) bool {
	switch t {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackIrrelevant, FeedbackMisleading:
		return true
	}
	return false
}

// RecommendationFeedback is logged for later analysis only; it never feeds
// back into the scoring algorithms automatically.
type RecommendationFeedback struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_user_recommendation" json:"user_id"`
	User             *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RecommendationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_user_recommendation;index" json:"recommendation_id"`
	Recommendation   *Recommendation `gorm:"constraint:OnDelete:CASCADE;foreignKey:RecommendationID;references:ID" json:"recommendation,omitempty"`
	FeedbackType     string          `gorm:"column:feedback_type;not null;index" json:"feedback_type"`
	Comment          string          `gorm:"column:comment" json:"comment"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

func (RecommendationFeedback) TableName() string { return "recommendation_feedback" }
