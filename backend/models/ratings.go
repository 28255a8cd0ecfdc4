package models

import "time"

type EffectivenessRange string

const (
	Range0To10   EffectivenessRange = "0-10"
	Range10To50  EffectivenessRange = "10-50"
	Range50To80  EffectivenessRange = "50-80"
	Range80To100 EffectivenessRange = "80-100"
)

// EffectivenessRanges lists the buckets in ascending order.
var EffectivenessRanges = []EffectivenessRange{Range0To10, Range10To50, Range50To80, Range80To100}

func (r EffectivenessRange) Valid() bool {
	switch r {
	case Range0To10, Range10To50, Range50To80, Range80To100:
		return true
	}
	return false
}

// Rating is one user's effectiveness bucket for one template.
type Rating struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	TemplateID         uint               `gorm:"not null;uniqueIndex:idx_rating_template_user,priority:1" json:"templateId"`
	UserID             uint               `gorm:"not null;index;uniqueIndex:idx_rating_template_user,priority:2" json:"userId"`
	EffectivenessRange EffectivenessRange `gorm:"type:varchar(16);not null" json:"effectivenessRange"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}
