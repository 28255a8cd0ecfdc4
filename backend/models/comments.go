package models

import "time"

const MaxCommentLength = 2000

type CommentRole string

const (
	CommentRoleUser   CommentRole = "user"
	CommentRoleExpert CommentRole = "expert"
	CommentRoleAdmin  CommentRole = "admin"
)

// CommentRoleFor snapshots the author's privileges at the time of writing.
func CommentRoleFor(u *User) CommentRole {
	switch {
	case u == nil:
		return CommentRoleUser
	case u.Role == RoleAdmin:
		return CommentRoleAdmin
	case u.Role == RoleExpert && u.IsVerifiedExpert:
		return CommentRoleExpert
	default:
		return CommentRoleUser
	}
}

type Comment struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	TemplateID uint        `gorm:"not null;index" json:"templateId"`
	UserID     uint        `gorm:"not null;index" json:"userId"`
	ParentID   *uint       `gorm:"index" json:"parentId"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	Role       CommentRole `gorm:"type:varchar(16);not null;default:user" json:"role"`
	CreatedAt  time.Time   `gorm:"index" json:"createdAt"`
}

// CommentNode is a comment with its assembled replies.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}
