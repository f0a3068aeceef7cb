package types

import (
	"time"

	"github.com/google/uuid"
)

type UserStats struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TotalPoints      int       `gorm:"column:total_points;not null;default:0;index" json:"total_points"`
	CurrentLevel     int       `gorm:"column:current_level;not null;default:1" json:"current_level"`
	CoursesCompleted int       `gorm:"column:courses_completed;not null;default:0" json:"courses_completed"`
	CoursesEnrolled  int       `gorm:"column:courses_enrolled;not null;default:0" json:"courses_enrolled"`
	LessonsViewed    int       `gorm:"column:lessons_viewed;not null;default:0" json:"lessons_viewed"`
	LastActivityAt   time.Time `gorm:"column:last_activity_at;not null" json:"last_activity_at"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (UserStats) TableName() string { return "user_stats" }

// Level thresholds: index i holds the minimum points for level i+1.
var levelThresholds = []int{0, 100, 250, 500, 1000, 2000, 4000, 7000, 11000, 16000}

// LevelForPoints maps a points total to its level (1-based).
func LevelForPoints(points int) int {
	level := 1
	for i, min := range levelThresholds {
		if points >= min {
			level = i + 1
		}
	}
	return level
}
