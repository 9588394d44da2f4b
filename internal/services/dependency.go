package services

import (
	"errors"

	"github.com/taskforge-dev/taskforge/internal/models"
	"gorm.io/gorm"
)

// AddTaskDependency records that taskID cannot start until dependsOnTaskID
// is finished. At most one edge per ordered pair; self-edges are refused.
// Cycles across multiple tasks are not detected.
func AddTaskDependency(gdb *gorm.DB, taskID, dependsOnTaskID uint) (models.TaskDependency, error) {
	if taskID == dependsOnTaskID {
		return models.TaskDependency{}, BadRequest("A task cannot depend on itself")
	}

	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return models.TaskDependency{}, NotFound("Task not found")
	}

	var dependsOn models.Task

	if err := gdb.First(&dependsOn, dependsOnTaskID).Error; err != nil {
		return models.TaskDependency{}, NotFound("Prerequisite task not found")
	}

	var existing models.TaskDependency

	err := gdb.Where("task_id = ? AND depends_on_task_id = ?", taskID, dependsOnTaskID).First(&existing).Error

	if err == nil {
		return models.TaskDependency{}, BadRequest("Dependency already exists")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TaskDependency{}, err
	}

	dependency := models.TaskDependency{
		TaskID:          taskID,
		DependsOnTaskID: dependsOnTaskID,
	}

	if err := gdb.Create(&dependency).Error; err != nil {
		return models.TaskDependency{}, err
	}

	return dependency, nil
}

func RemoveTaskDependency(gdb *gorm.DB, taskID, dependsOnTaskID uint) error {
	var dependency models.TaskDependency

	err := gdb.Where("task_id = ? AND depends_on_task_id = ?", taskID, dependsOnTaskID).First(&dependency).Error

	if err != nil {
		return NotFound("Dependency not found")
	}

	return gdb.Unscoped().Delete(&dependency).Error
}

// ListTaskDependencies returns the tasks the given task depends on.
func ListTaskDependencies(gdb *gorm.DB, taskID uint) ([]models.Task, error) {
	if err := gdb.First(&models.Task{}, taskID).Error; err != nil {
		return nil, NotFound("Task not found")
	}

	var tasks []models.Task

	err := gdb.
		Joins("JOIN task_dependencies ON task_dependencies.depends_on_task_id = tasks.id").
		Where("task_dependencies.task_id = ?", taskID).
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListTaskDependents returns the tasks that depend on the given task.
func ListTaskDependents(gdb *gorm.DB, taskID uint) ([]models.Task, error) {
	if err := gdb.First(&models.Task{}, taskID).Error; err != nil {
		return nil, NotFound("Task not found")
	}

	var tasks []models.Task

	err := gdb.
		Joins("JOIN task_dependencies ON task_dependencies.task_id = tasks.id").
		Where("task_dependencies.depends_on_task_id = ?", taskID).
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	return tasks, nil
}
