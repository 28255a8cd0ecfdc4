package models

import (
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleExpert Role = "expert"
	RoleAdmin  Role = "admin"
)

type User struct {
	gorm.Model
	Username         string `gorm:"unique;not null" json:"username"`
	Email            string `gorm:"unique;not null" json:"email"`
	Role             Role   `gorm:"type:varchar(16);default:user" json:"role"`
	IsVerifiedExpert bool   `gorm:"not null;default:false" json:"isVerifiedExpert"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
