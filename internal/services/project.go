package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/gorm"
)

type CreateProjectInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectPatch carries partial updates. Nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// CreateProject inserts the project with the creator as its sole PM. The
// initial status is derived from the start date: future start means PLANNED.
func CreateProject(gdb *gorm.DB, input CreateProjectInput, creator models.User) (models.Project, error) {
	if input.StartDate == nil {
		return models.Project{}, BadRequest("Project start date is required")
	}

	var existing models.Project

	err := gdb.Where("name = ?", input.Name).First(&existing).Error

	if err == nil {
		return models.Project{}, Conflict(fmt.Sprintf("Project %q already exists", input.Name))
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, err
	}

	status := types.ProjectStatusInProgress
	if startOfDay(time.Now()).Before(startOfDay(*input.StartDate)) {
		status = types.ProjectStatusPlanned
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   *input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
	}

	var created models.Notification

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    creator.ID,
			ProjectID: project.ID,
			Role:      types.ProjectRolePM,
		}

		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		notification, err := createNotification(tx, creator.ID, types.NotifyProjectCreated,
			fmt.Sprintf("Project %q was created and you are its project manager", project.Name))
		if err != nil {
			return err
		}

		created = notification
		return nil
	})

	if err != nil {
		return models.Project{}, err
	}

	pushNotifications([]models.Notification{created})

	return project, nil
}

// UpdateProject applies a partial update. PM only. A transition to COMPLETED
// is refused while any task is unfinished.
func UpdateProject(gdb *gorm.DB, projectID uint, patch ProjectPatch, actor models.User) (models.Project, error) {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return models.Project{}, NotFound("Project not found")
	}

	if !IsProjectManager(gdb, actor, project.ID) {
		return models.Project{}, Forbidden("Only a project manager can update the project")
	}

	if patch.Name != nil && *patch.Name != project.Name {
		var other models.Project

		err := gdb.Where("name = ? AND id <> ?", *patch.Name, project.ID).First(&other).Error

		if err == nil {
			return models.Project{}, Conflict(fmt.Sprintf("Project %q already exists", *patch.Name))
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, err
		}

		project.Name = *patch.Name
	}

	if patch.Description != nil {
		project.Description = *patch.Description
	}

	if patch.StartDate != nil {
		project.StartDate = *patch.StartDate
	}

	if patch.EndDate != nil {
		project.EndDate = patch.EndDate
	}

	if patch.Status != nil {
		if !types.ValidProjectStatus(*patch.Status) {
			return models.Project{}, BadRequest(fmt.Sprintf("Invalid project status %q", *patch.Status))
		}

		if *patch.Status == types.ProjectStatusCompleted {
			var unfinished int64

			err := gdb.Model(&models.Task{}).
				Where("project_id = ? AND status <> ?", project.ID, types.TaskStatusFinished).
				Count(&unfinished).Error

			if err != nil {
				return models.Project{}, err
			}

			if unfinished > 0 {
				return models.Project{}, Conflict("Project cannot be completed while tasks are unfinished")
			}
		}

		project.Status = *patch.Status
	}

	var pending []models.Notification

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		memberships, err := projectMemberships(tx, project.ID)
		if err != nil {
			return err
		}

		for _, membership := range memberships {
			if membership.UserID == actor.ID {
				continue
			}

			notification, err := createNotification(tx, membership.UserID, types.NotifyProjectUpdated,
				fmt.Sprintf("Project %q was updated by %s", project.Name, actor.Name))
			if err != nil {
				return err
			}

			pending = append(pending, notification)
		}

		return nil
	})

	if err != nil {
		return models.Project{}, err
	}

	pushNotifications(pending)

	return project, nil
}

// DeleteProject removes the project and everything it owns. PM only. The
// member list is captured first so the fan-out can still reach everyone.
func DeleteProject(gdb *gorm.DB, projectID uint, actor models.User) error {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return NotFound("Project not found")
	}

	if !IsProjectManager(gdb, actor, project.ID) {
		return Forbidden("Only a project manager can delete the project")
	}

	memberships, err := projectMemberships(gdb, project.ID)
	if err != nil {
		return err
	}

	var pending []models.Notification

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := deleteProjectCascade(tx, project.ID); err != nil {
			return err
		}

		for _, membership := range memberships {
			if membership.UserID == actor.ID {
				continue
			}

			notification, err := createNotification(tx, membership.UserID, types.NotifyProjectDeleted,
				fmt.Sprintf("Project %q was deleted by %s", project.Name, actor.Name))
			if err != nil {
				return err
			}

			pending = append(pending, notification)
		}

		return nil
	})

	if err != nil {
		return err
	}

	pushNotifications(pending)

	return nil
}

// GetProject returns the project with its memberships and tasks preloaded.
// Visible to any member or an admin.
func GetProject(gdb *gorm.DB, projectID uint, actor models.User) (models.Project, error) {
	var project models.Project

	err := gdb.Preload("Memberships.User").Preload("Tasks").First(&project, projectID).Error

	if err != nil {
		return models.Project{}, NotFound("Project not found")
	}

	if _, ok := RoleOf(gdb, actor, project.ID); !ok {
		return models.Project{}, Forbidden("You are not a member of this project")
	}

	return project, nil
}

// AddProjectMember adds a user to a project with a role. PM only.
func AddProjectMember(gdb *gorm.DB, projectID, userID uint, role string, actor models.User) (models.ProjectMembership, error) {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return models.ProjectMembership{}, NotFound("Project not found")
	}

	if !IsProjectManager(gdb, actor, project.ID) {
		return models.ProjectMembership{}, Forbidden("Only a project manager can add members")
	}

	if !types.ValidProjectRole(role) {
		return models.ProjectMembership{}, BadRequest(fmt.Sprintf("Invalid project role %q", role))
	}

	var target models.User

	if err := gdb.First(&target, userID).Error; err != nil {
		return models.ProjectMembership{}, NotFound("User not found")
	}

	var existing models.ProjectMembership

	err := gdb.Where("user_id = ? AND project_id = ?", userID, project.ID).First(&existing).Error

	if err == nil {
		return models.ProjectMembership{}, Conflict("User is already a member of this project")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProjectMembership{}, err
	}

	membership := models.ProjectMembership{
		UserID:    userID,
		ProjectID: project.ID,
		Role:      role,
	}

	var pending []models.Notification

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		added, err := createNotification(tx, target.ID, types.NotifyMemberAdded,
			fmt.Sprintf("You were added to project %q as %s", project.Name, role))
		if err != nil {
			return err
		}

		confirmation, err := createNotification(tx, actor.ID, types.NotifyMemberAdded,
			fmt.Sprintf("%s was added to project %q as %s", target.Name, project.Name, role))
		if err != nil {
			return err
		}

		pending = append(pending, added, confirmation)
		return nil
	})

	if err != nil {
		return models.ProjectMembership{}, err
	}

	pushNotifications(pending)

	return membership, nil
}

// RemoveProjectMember removes a membership. PM only. The last remaining PM
// cannot be removed. The user's task assignments across the project are
// deleted in the same transaction.
func RemoveProjectMember(gdb *gorm.DB, projectID, userID uint, actor models.User) error {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return NotFound("Project not found")
	}

	if !IsProjectManager(gdb, actor, project.ID) {
		return Forbidden("Only a project manager can remove members")
	}

	var membership models.ProjectMembership

	err := gdb.Where("user_id = ? AND project_id = ?", userID, project.ID).First(&membership).Error

	if err != nil {
		return NotFound("User is not a member of this project")
	}

	if membership.Role == types.ProjectRolePM {
		count, err := countProjectManagers(gdb, project.ID)
		if err != nil {
			return err
		}

		if count <= 1 {
			return Conflict("Cannot remove the last project manager")
		}
	}

	var pending []models.Notification

	err = gdb.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)

		err := tx.Unscoped().
			Where("user_id = ? AND task_id IN (?)", userID, taskIDs).
			Delete(&models.TaskAssignee{}).Error
		if err != nil {
			return err
		}

		if err := tx.Unscoped().Delete(&membership).Error; err != nil {
			return err
		}

		notification, err := createNotification(tx, userID, types.NotifyMemberRemoved,
			fmt.Sprintf("You were removed from project %q", project.Name))
		if err != nil {
			return err
		}

		pending = append(pending, notification)
		return nil
	})

	if err != nil {
		return err
	}

	pushNotifications(pending)

	return nil
}

// UpdateMemberRole changes a member's role. PM only. Downgrading the last
// remaining PM is refused.
func UpdateMemberRole(gdb *gorm.DB, projectID, userID uint, newRole string, actor models.User) (models.ProjectMembership, error) {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return models.ProjectMembership{}, NotFound("Project not found")
	}

	if !IsProjectManager(gdb, actor, project.ID) {
		return models.ProjectMembership{}, Forbidden("Only a project manager can change member roles")
	}

	if !types.ValidProjectRole(newRole) {
		return models.ProjectMembership{}, BadRequest(fmt.Sprintf("Invalid project role %q", newRole))
	}

	var membership models.ProjectMembership

	err := gdb.Where("user_id = ? AND project_id = ?", userID, project.ID).First(&membership).Error

	if err != nil {
		return models.ProjectMembership{}, NotFound("User is not a member of this project")
	}

	oldRole := membership.Role

	if oldRole == newRole {
		return membership, nil
	}

	if oldRole == types.ProjectRolePM {
		count, err := countProjectManagers(gdb, project.ID)
		if err != nil {
			return models.ProjectMembership{}, err
		}

		if count <= 1 {
			return models.ProjectMembership{}, Conflict("Cannot downgrade the last project manager")
		}
	}

	membership.Role = newRole

	var pending []models.Notification

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&membership).Error; err != nil {
			return err
		}

		notification, err := createNotification(tx, userID, types.NotifyMemberRoleChanged,
			fmt.Sprintf("Your role on project %q changed from %s to %s", project.Name, oldRole, newRole))
		if err != nil {
			return err
		}

		pending = append(pending, notification)
		return nil
	})

	if err != nil {
		return models.ProjectMembership{}, err
	}

	pushNotifications(pending)

	return membership, nil
}

// ListProjectMembers is visible to any member of the project or an admin.
func ListProjectMembers(gdb *gorm.DB, projectID uint, actor models.User) ([]models.ProjectMembership, error) {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		return nil, NotFound("Project not found")
	}

	if _, ok := RoleOf(gdb, actor, project.ID); !ok {
		return nil, Forbidden("You are not a member of this project")
	}

	var memberships []models.ProjectMembership

	err := gdb.Preload("User").Where("project_id = ?", project.ID).Find(&memberships).Error

	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// ListUserProjects returns every project for admins, otherwise the projects
// the user holds a membership on.
func ListUserProjects(gdb *gorm.DB, user models.User) ([]models.Project, error) {
	var projects []models.Project

	if user.GlobalRole == types.GlobalRoleAdmin {
		if err := gdb.Find(&projects).Error; err != nil {
			return nil, err
		}
		return projects, nil
	}

	err := gdb.
		Joins("JOIN project_memberships ON project_memberships.project_id = projects.id").
		Where("project_memberships.user_id = ?", user.ID).
		Distinct().
		Find(&projects).Error

	if err != nil {
		return nil, err
	}

	return projects, nil
}

func projectMemberships(gdb *gorm.DB, projectID uint) ([]models.ProjectMembership, error) {
	var memberships []models.ProjectMembership

	err := gdb.Where("project_id = ?", projectID).Find(&memberships).Error

	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func countProjectManagers(gdb *gorm.DB, projectID uint) (int64, error) {
	var count int64

	err := gdb.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND role = ?", projectID, types.ProjectRolePM).
		Count(&count).Error

	return count, err
}
