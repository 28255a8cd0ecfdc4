package models

import "gorm.io/gorm"

type TemplateStatus string

const (
	TemplateDraft    TemplateStatus = "draft"
	TemplatePending  TemplateStatus = "pending"
	TemplateApproved TemplateStatus = "approved"
	TemplateRejected TemplateStatus = "rejected"
)

// Template is the subset of a marketplace prompt template that the
// engagement endpoints need. Everything else belongs to the catalog.
type Template struct {
	gorm.Model
	Title   string         `json:"title"`
	OwnerID uint           `gorm:"not null;index" json:"ownerId"`
	Status  TemplateStatus `gorm:"type:varchar(16);not null;default:draft;index" json:"status"`
}
