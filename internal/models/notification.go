package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model

	UserID  uint   `gorm:"not null;index"`
	Status  string `gorm:"not null"` // e.g. "PROJECT_CREATED", "MEMBER_ADDED"
	Message string `gorm:"not null"`
	IsRead  bool   `gorm:"not null;default:false"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
