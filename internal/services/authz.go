package services

import (
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/gorm"
)

// RoleOf resolves a user's effective role on a project. Admins act as an
// implicit PM everywhere; the global-role check deliberately short-circuits
// before any membership lookup. Returns ok=false for non-members.
func RoleOf(gdb *gorm.DB, user models.User, projectID uint) (string, bool) {
	if user.GlobalRole == types.GlobalRoleAdmin {
		return types.ProjectRolePM, true
	}

	var membership models.ProjectMembership

	err := gdb.Where("user_id = ? AND project_id = ?", user.ID, projectID).First(&membership).Error

	if err != nil {
		return "", false
	}

	return membership.Role, true
}

// IsProjectManager reports whether the user resolves to PM on the project.
func IsProjectManager(gdb *gorm.DB, user models.User, projectID uint) bool {
	role, ok := RoleOf(gdb, user, projectID)
	return ok && role == types.ProjectRolePM
}
