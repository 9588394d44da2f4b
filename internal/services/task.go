package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	ProjectID   uint
	Name        string
	Description string
	StartDate   *time.Time
	Priority    string
}

// TaskPatch carries partial updates. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	Priority    *string
	Status      *string
}

// CreateTask inserts a task under a project. Any project role may create
// tasks; the start date may not precede the project's start date.
func CreateTask(gdb *gorm.DB, input CreateTaskInput, creator models.User) (models.Task, error) {
	var project models.Project

	if err := gdb.First(&project, input.ProjectID).Error; err != nil {
		return models.Task{}, NotFound("Project not found")
	}

	if _, ok := RoleOf(gdb, creator, project.ID); !ok {
		return models.Task{}, Forbidden("You are not a member of this project")
	}

	if input.StartDate == nil {
		return models.Task{}, BadRequest("Task start date is required")
	}

	if startOfDay(*input.StartDate).Before(startOfDay(project.StartDate)) {
		return models.Task{}, BadRequest("Task start date cannot precede the project start date")
	}

	priority := input.Priority
	if priority == "" {
		priority = types.TaskPriorityOptional
	}

	if !types.ValidTaskPriority(priority) {
		return models.Task{}, BadRequest(fmt.Sprintf("Invalid task priority %q", priority))
	}

	task := models.Task{
		ProjectID:   project.ID,
		Name:        input.Name,
		Description: input.Description,
		StartDate:   *input.StartDate,
		Priority:    priority,
		Status:      types.TaskStatusToDo,
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		return recordHistory(tx, task.ID, creator.ID, types.HistoryTaskCreated, map[string]interface{}{
			"name":       task.Name,
			"start_date": task.StartDate,
			"priority":   task.Priority,
			"status":     task.Status,
		})
	})

	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

// canEditTask: a PM may always edit; otherwise the actor must be one of the
// task's assignees. Plain project members are read-only here.
func canEditTask(gdb *gorm.DB, task models.Task, actor models.User) bool {
	if IsProjectManager(gdb, actor, task.ProjectID) {
		return true
	}

	var assignee models.TaskAssignee

	err := gdb.Where("task_id = ? AND user_id = ?", task.ID, actor.ID).First(&assignee).Error

	return err == nil
}

// UpdateTask applies a partial update to a task. Entering FINISHED stamps
// the end date with today; leaving FINISHED clears it again.
func UpdateTask(gdb *gorm.DB, taskID uint, patch TaskPatch, actor models.User) (models.Task, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return models.Task{}, NotFound("Task not found")
	}

	if !canEditTask(gdb, task, actor) {
		return models.Task{}, Forbidden("Only a project manager or an assignee can update the task")
	}

	var project models.Project

	if err := gdb.First(&project, task.ProjectID).Error; err != nil {
		return models.Task{}, err
	}

	changes := make(map[string]interface{})

	if patch.Name != nil && *patch.Name != task.Name {
		task.Name = *patch.Name
		changes["name"] = task.Name
	}

	if patch.Description != nil && *patch.Description != task.Description {
		task.Description = *patch.Description
		changes["description"] = task.Description
	}

	if patch.StartDate != nil {
		if startOfDay(*patch.StartDate).Before(startOfDay(project.StartDate)) {
			return models.Task{}, BadRequest("Task start date cannot precede the project start date")
		}

		task.StartDate = *patch.StartDate
		changes["start_date"] = task.StartDate
	}

	if patch.Priority != nil && *patch.Priority != task.Priority {
		if !types.ValidTaskPriority(*patch.Priority) {
			return models.Task{}, BadRequest(fmt.Sprintf("Invalid task priority %q", *patch.Priority))
		}

		task.Priority = *patch.Priority
		changes["priority"] = task.Priority
	}

	statusChanged := false
	oldStatus := task.Status

	if patch.Status != nil && *patch.Status != task.Status {
		if !types.ValidTaskStatus(*patch.Status) {
			return models.Task{}, BadRequest(fmt.Sprintf("Invalid task status %q", *patch.Status))
		}

		newStatus := *patch.Status

		if newStatus == types.TaskStatusFinished {
			now := time.Now()
			task.EndDate = &now
		} else if oldStatus == types.TaskStatusFinished {
			task.EndDate = nil
		}

		task.Status = newStatus
		statusChanged = true
		changes["status"] = task.Status
	}

	var pending []models.Notification

	err := gdb.Transaction(func(tx *gorm.DB) error {
		// Save over Updates: EndDate may have been cleared to nil.
		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		if len(changes) > 0 {
			if err := recordHistory(tx, task.ID, actor.ID, types.HistoryTaskUpdated, changes); err != nil {
				return err
			}
		}

		if statusChanged {
			var assignees []models.TaskAssignee

			if err := tx.Where("task_id = ?", task.ID).Find(&assignees).Error; err != nil {
				return err
			}

			for _, assignee := range assignees {
				if assignee.UserID == actor.ID {
					continue
				}

				notification, err := createNotification(tx, assignee.UserID, types.NotifyTaskStatusChanged,
					fmt.Sprintf("Task %q moved from %s to %s", task.Name, oldStatus, task.Status))
				if err != nil {
					return err
				}

				pending = append(pending, notification)
			}
		}

		return nil
	})

	if err != nil {
		return models.Task{}, err
	}

	pushNotifications(pending)

	return task, nil
}

// GetTask is a plain lookup; it carries no membership gate.
func GetTask(gdb *gorm.DB, taskID uint) (models.Task, error) {
	var task models.Task

	err := gdb.
		Preload("Assignees.User").
		Preload("Comments").
		Preload("Files").
		Preload("DependsOn").
		First(&task, taskID).Error

	if err != nil {
		return models.Task{}, NotFound("Task not found")
	}

	return task, nil
}

// ListProjectTasks is visible to any member of the project or an admin.
func ListProjectTasks(gdb *gorm.DB, projectID uint, actor models.User) ([]models.Task, error) {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return nil, NotFound("Project not found")
	}

	if _, ok := RoleOf(gdb, actor, project.ID); !ok {
		return nil, Forbidden("You are not a member of this project")
	}

	var tasks []models.Task

	if err := gdb.Where("project_id = ?", project.ID).Order("start_date").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// AddTaskAssignee assigns a project member to a task. PM only.
func AddTaskAssignee(gdb *gorm.DB, taskID, userID uint, actor models.User) (models.TaskAssignee, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return models.TaskAssignee{}, NotFound("Task not found")
	}

	if !IsProjectManager(gdb, actor, task.ProjectID) {
		return models.TaskAssignee{}, Forbidden("Only a project manager can assign tasks")
	}

	var membership models.ProjectMembership

	err := gdb.Where("user_id = ? AND project_id = ?", userID, task.ProjectID).First(&membership).Error

	if err != nil {
		return models.TaskAssignee{}, BadRequest("Assignee must be a member of the project")
	}

	var existing models.TaskAssignee

	err = gdb.Where("task_id = ? AND user_id = ?", task.ID, userID).First(&existing).Error

	if err == nil {
		return models.TaskAssignee{}, Conflict("User is already assigned to this task")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TaskAssignee{}, err
	}

	assignee := models.TaskAssignee{
		TaskID: task.ID,
		UserID: userID,
	}

	var pending []models.Notification

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignee).Error; err != nil {
			return err
		}

		if err := recordHistory(tx, task.ID, actor.ID, types.HistoryAssigneeAdded, map[string]interface{}{
			"user_id": userID,
		}); err != nil {
			return err
		}

		notification, err := createNotification(tx, userID, types.NotifyTaskAssigned,
			fmt.Sprintf("You were assigned to task %q", task.Name))
		if err != nil {
			return err
		}

		pending = append(pending, notification)
		return nil
	})

	if err != nil {
		return models.TaskAssignee{}, err
	}

	pushNotifications(pending)

	if Calendar != nil {
		go func() {
			if err := Calendar.ExportTaskStart(userID, task); err != nil {
				log.Printf("Calendar export failed for task %d: %v", task.ID, err)
			}
		}()
	}

	return assignee, nil
}

// RemoveTaskAssignee unassigns a user from a task. PM only.
func RemoveTaskAssignee(gdb *gorm.DB, taskID, userID uint, actor models.User) error {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return NotFound("Task not found")
	}

	if !IsProjectManager(gdb, actor, task.ProjectID) {
		return Forbidden("Only a project manager can unassign tasks")
	}

	var assignee models.TaskAssignee

	err := gdb.Where("task_id = ? AND user_id = ?", task.ID, userID).First(&assignee).Error

	if err != nil {
		return NotFound("User is not assigned to this task")
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&assignee).Error; err != nil {
			return err
		}

		return recordHistory(tx, task.ID, actor.ID, types.HistoryAssigneeRemoved, map[string]interface{}{
			"user_id": userID,
		})
	})
}

// AddTaskComment: any member of the task's project may comment.
func AddTaskComment(gdb *gorm.DB, taskID uint, body string, actor models.User) (models.TaskComment, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return models.TaskComment{}, NotFound("Task not found")
	}

	if _, ok := RoleOf(gdb, actor, task.ProjectID); !ok {
		return models.TaskComment{}, Forbidden("You are not a member of this project")
	}

	if body == "" {
		return models.TaskComment{}, BadRequest("Comment body is required")
	}

	comment := models.TaskComment{
		TaskID: task.ID,
		UserID: actor.ID,
		Body:   body,
	}

	if err := gdb.Create(&comment).Error; err != nil {
		return models.TaskComment{}, err
	}

	return comment, nil
}

// DeleteTaskComment: the author or a PM may delete a comment.
func DeleteTaskComment(gdb *gorm.DB, commentID uint, actor models.User) error {
	var comment models.TaskComment

	if err := gdb.Preload("Task").First(&comment, commentID).Error; err != nil {
		return NotFound("Comment not found")
	}

	if comment.UserID != actor.ID && !IsProjectManager(gdb, actor, comment.Task.ProjectID) {
		return Forbidden("Only the author or a project manager can delete the comment")
	}

	return gdb.Unscoped().Delete(&comment).Error
}

func ListTaskComments(gdb *gorm.DB, taskID uint, actor models.User) ([]models.TaskComment, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return nil, NotFound("Task not found")
	}

	if _, ok := RoleOf(gdb, actor, task.ProjectID); !ok {
		return nil, Forbidden("You are not a member of this project")
	}

	var comments []models.TaskComment

	err := gdb.Preload("User").Where("task_id = ?", task.ID).Order("created_at").Find(&comments).Error

	if err != nil {
		return nil, err
	}

	return comments, nil
}

// ListTaskHistory is visible to any member of the project or an admin.
func ListTaskHistory(gdb *gorm.DB, taskID uint, actor models.User) ([]models.TaskHistory, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return nil, NotFound("Task not found")
	}

	if _, ok := RoleOf(gdb, actor, task.ProjectID); !ok {
		return nil, Forbidden("You are not a member of this project")
	}

	var history []models.TaskHistory

	err := gdb.Where("task_id = ?", task.ID).Order("created_at DESC").Find(&history).Error

	if err != nil {
		return nil, err
	}

	return history, nil
}

func recordHistory(tx *gorm.DB, taskID, userID uint, action string, changes map[string]interface{}) error {
	payload, err := json.Marshal(changes)

	if err != nil {
		return err
	}

	entry := models.TaskHistory{
		TaskID:  taskID,
		UserID:  userID,
		Action:  action,
		Changes: datatypes.JSON(payload),
	}

	return tx.Create(&entry).Error
}
