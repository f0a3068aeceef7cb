package types

import (
	"time"
)

// RecommendationSettings is a single-row table (id = 1). It is loaded once
// at the start of each generation run and passed by value from there on;
// nothing reads it mid-computation.
type RecommendationSettings struct {
	ID                        int       `gorm:"primaryKey" json:"id"`
	DefaultAlgorithm          string    `gorm:"column:default_algorithm;not null;default:hybrid" json:"default_algorithm"`
	MaxRecommendationsPerUser int       `gorm:"column:max_recommendations_per_user;not null;default:10" json:"max_recommendations_per_user"`
	RecommendationExpiryDays  int       `gorm:"column:recommendation_expiry_days;not null;default:7" json:"recommendation_expiry_days"`
	AutoRefreshEnabled        bool      `gorm:"column:auto_refresh_enabled;not null;default:true" json:"auto_refresh_enabled"`
	RefreshIntervalHours      int       `gorm:"column:refresh_interval_hours;not null;default:24" json:"refresh_interval_hours"`
	ExcludeCompletedCourses   bool      `gorm:"column:exclude_completed_courses;not null;default:true" json:"exclude_completed_courses"`
	ExcludeEnrolledCourses    bool      `gorm:"column:exclude_enrolled_courses;not null;default:true" json:"exclude_enrolled_courses"`
	CollaborativeWeight       float64   `gorm:"column:collaborative_weight;not null;default:0.35" json:"collaborative_weight"`
	ContentBasedWeight        float64   `gorm:"column:content_based_weight;not null;default:0.25" json:"content_based_weight"`
	PopularityWeight          float64   `gorm:"column:popularity_weight;not null;default:0.15" json:"popularity_weight"`
	KnowledgeBasedWeight      float64   `gorm:"column:knowledge_based_weight;not null;default:0.25" json:"knowledge_based_weight"`
	CreatedAt                 time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt                 time.Time `gorm:"not null" json:"updated_at"`
}

func (RecommendationSettings) TableName() string { return "recommendation_settings" }

// DefaultRecommendationSettings seeds the singleton row.
func DefaultRecommendationSettings() *RecommendationSettings {
	return &RecommendationSettings{
		ID:                        1,
		DefaultAlgorithm:          AlgorithmHybrid,
		MaxRecommendationsPerUser: 10,
		RecommendationExpiryDays:  7,
		AutoRefreshEnabled:        true,
		RefreshIntervalHours:      24,
		ExcludeCompletedCourses:   true,
		ExcludeEnrolledCourses:    true,
		CollaborativeWeight:       0.35,
		ContentBasedWeight:        0.25,
		PopularityWeight:          0.15,
		KnowledgeBasedWeight:      0.25,
	}
}
