package models

import "gorm.io/gorm"

type TaskComment struct {
	gorm.Model

	TaskID uint   `gorm:"not null;index"`
	UserID uint   `gorm:"not null;index"`
	Body   string `gorm:"not null"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
