package models

import "time"

// Upvote is a presence record: the row exists iff the user has upvoted.
type Upvote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TemplateID uint      `gorm:"not null;uniqueIndex:idx_upvote_template_user,priority:1" json:"templateId"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_upvote_template_user,priority:2" json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}
