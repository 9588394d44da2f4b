package models

import "gorm.io/gorm"

// TaskDependency is a directed edge: TaskID must finish after DependsOnTaskID.
type TaskDependency struct {
	gorm.Model

	TaskID          uint `gorm:"not null;uniqueIndex:idx_task_depends_on"`
	DependsOnTaskID uint `gorm:"not null;uniqueIndex:idx_task_depends_on"`

	// Relationships
	Task          Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	DependsOnTask Task `gorm:"foreignKey:DependsOnTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
