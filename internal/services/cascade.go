package services

import (
	"github.com/taskforge-dev/taskforge/internal/models"
	"gorm.io/gorm"
)

// Application-level cascades. The database constraints mirror these, but the
// deletes are issued explicitly inside the owning transaction so ownership
// stays visible in one place.

func deleteTaskCascade(tx *gorm.DB, taskID uint) error {
	children := []interface{}{
		&models.TaskAssignee{},
		&models.TaskComment{},
		&models.TaskFile{},
		&models.TaskHistory{},
	}

	for _, child := range children {
		if err := tx.Unscoped().Where("task_id = ?", taskID).Delete(child).Error; err != nil {
			return err
		}
	}

	err := tx.Unscoped().
		Where("task_id = ? OR depends_on_task_id = ?", taskID, taskID).
		Delete(&models.TaskDependency{}).Error
	if err != nil {
		return err
	}

	return tx.Unscoped().Delete(&models.Task{}, taskID).Error
}

func deleteProjectCascade(tx *gorm.DB, projectID uint) error {
	var taskIDs []uint

	err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error
	if err != nil {
		return err
	}

	for _, taskID := range taskIDs {
		if err := deleteTaskCascade(tx, taskID); err != nil {
			return err
		}
	}

	err = tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error
	if err != nil {
		return err
	}

	return tx.Unscoped().Delete(&models.Project{}, projectID).Error
}
