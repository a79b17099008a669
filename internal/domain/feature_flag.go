package domain

import "time"

// FeatureFlag is a named rollout toggle. Name is unique across the store and
// immutable after creation; RolloutPercentage is always within [0,100].
type FeatureFlag struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Enabled           bool      `gorm:"not null;default:true" json:"enabled"`
	RolloutPercentage float64   `gorm:"not null;default:100" json:"rollout_percentage"`
	Description       string    `gorm:"size:512" json:"description"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
