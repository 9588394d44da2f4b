package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint      `gorm:"not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	StartDate   time.Time `gorm:"not null"`
	EndDate     *time.Time // stamped when the task enters FINISHED, cleared when it leaves
	Priority    string    `gorm:"not null"` // "CRITICAL", "IMPORTANT", "OPTIONAL"
	Status      string    `gorm:"not null"` // "TO_DO", "IN_PROGRESS", "FINISHED"

	// Relationships
	Project    Project          `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignees  []TaskAssignee   `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments   []TaskComment    `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Files      []TaskFile       `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	History    []TaskHistory    `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	DependsOn  []TaskDependency `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Dependents []TaskDependency `gorm:"foreignKey:DependsOnTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
