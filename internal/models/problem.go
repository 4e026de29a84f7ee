package models

import "time"

// Problem is an entry of the pre-authored problem bank. The bank is
// read-only at runtime; teachers may copy problems into assignments.
type Problem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProblemID string    `gorm:"size:64;uniqueIndex;not null" json:"problem_id"`
	Topic     string    `gorm:"size:128;not null;index" json:"topic"`
	Level     int       `gorm:"not null;index" json:"level"`
	Problem   string    `gorm:"type:text;not null" json:"problem"`
	Solution  string    `gorm:"type:text" json:"solution"`
	Type      string    `gorm:"size:32;not null;default:math" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
