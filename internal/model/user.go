package model

import (
	"time"
)

type UserRole string

const (
	Student        UserRole = "student"
	Teacher        UserRole = "teacher"
	ContentCreator UserRole = "content_creator"
	Parent         UserRole = "parent"
	Admin          UserRole = "admin"
)

// swagger:model User
type User struct {
	CatalogModel
	Name     string     `gorm:"size:100;not null" json:"name"`
	Email    string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role     UserRole   `gorm:"size:32;default:'student'" json:"role"`
	Language string     `gorm:"size:10;default:'en'" json:"language"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}
