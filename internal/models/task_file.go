package models

import "gorm.io/gorm"

type TaskFile struct {
	gorm.Model

	TaskID      uint   `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"` // uploader
	FileName    string `gorm:"not null"`       // original name as uploaded
	StoredName  string `gorm:"uniqueIndex;not null"`
	ContentType string
	Size        int64 `gorm:"not null"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
