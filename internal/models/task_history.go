package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskHistory struct {
	gorm.Model

	TaskID  uint           `gorm:"not null;index"`
	UserID  uint           `gorm:"not null;index"` // acting user
	Action  string         `gorm:"not null"`       // e.g. "TASK_CREATED", "TASK_UPDATED"
	Changes datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
