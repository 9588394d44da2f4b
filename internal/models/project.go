package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	StartDate   time.Time `gorm:"not null"`
	EndDate     *time.Time
	Status      string    `gorm:"not null"` // "PLANNED", "IN_PROGRESS", "COMPLETED"

	// Relationships
	Memberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks       []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
