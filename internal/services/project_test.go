package services

import (
	"testing"
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func TestCreateProjectDerivesStatus(t *testing.T) {
	gdb := openTestDB(t)
	creator := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)

	future := time.Now().AddDate(0, 0, 5)
	planned := createTestProject(t, gdb, creator, "Launch", future)

	if planned.Status != types.ProjectStatusPlanned {
		t.Errorf("Expected status PLANNED for future start, got %s", planned.Status)
	}

	started := createTestProject(t, gdb, creator, "Running", time.Now().AddDate(0, 0, -1))

	if started.Status != types.ProjectStatusInProgress {
		t.Errorf("Expected status IN_PROGRESS for past start, got %s", started.Status)
	}

	var memberships []models.ProjectMembership
	if err := gdb.Where("project_id = ?", planned.ID).Find(&memberships).Error; err != nil {
		t.Fatalf("Failed to load memberships: %v", err)
	}

	if len(memberships) != 1 {
		t.Fatalf("Expected creator as sole member, got %d memberships", len(memberships))
	}

	if memberships[0].UserID != creator.ID || memberships[0].Role != types.ProjectRolePM {
		t.Errorf("Expected creator as PM, got user %d role %s", memberships[0].UserID, memberships[0].Role)
	}
}

func TestCreateProjectRequiresStartDate(t *testing.T) {
	gdb := openTestDB(t)
	creator := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)

	_, err := CreateProject(gdb, CreateProjectInput{Name: "NoDate"}, creator)
	wantKind(t, err, KindBadRequest)
}

func TestCreateProjectDuplicateName(t *testing.T) {
	gdb := openTestDB(t)
	creator := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	createTestProject(t, gdb, creator, "Launch", time.Now())

	start := time.Now()
	_, err := CreateProject(gdb, CreateProjectInput{Name: "Launch", StartDate: &start}, creator)
	wantKind(t, err, KindConflict)

	var count int64
	if err := gdb.Model(&models.Project{}).Where("name = ?", "Launch").Count(&count).Error; err != nil {
		t.Fatalf("Failed to count projects: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected exactly one project row, got %d", count)
	}
}

func TestUpdateProjectRequiresPM(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	outsider := createUser(t, gdb, "Carol", types.GlobalRoleEmployee)
	admin := createUser(t, gdb, "Dave", types.GlobalRoleAdmin)

	project := createTestProject(t, gdb, pm, "Launch", time.Now())

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleMember, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	description := "updated"

	_, err := UpdateProject(gdb, project.ID, ProjectPatch{Description: &description}, member)
	wantKind(t, err, KindForbidden)

	_, err = UpdateProject(gdb, project.ID, ProjectPatch{Description: &description}, outsider)
	wantKind(t, err, KindForbidden)

	// Admins resolve to PM without any membership
	if _, err := UpdateProject(gdb, project.ID, ProjectPatch{Description: &description}, admin); err != nil {
		t.Fatalf("Expected admin update to succeed: %v", err)
	}

	_, err = UpdateProject(gdb, 9999, ProjectPatch{Description: &description}, pm)
	wantKind(t, err, KindNotFound)
}

func TestUpdateProjectRenameConflict(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now())
	createTestProject(t, gdb, pm, "Other", time.Now())

	name := "Other"
	_, err := UpdateProject(gdb, project.ID, ProjectPatch{Name: &name}, pm)
	wantKind(t, err, KindConflict)

	// Renaming to the project's own name is not a collision
	same := "Launch"
	if _, err := UpdateProject(gdb, project.ID, ProjectPatch{Name: &same}, pm); err != nil {
		t.Fatalf("Expected same-name rename to succeed: %v", err)
	}
}

func TestProjectCompletionGuard(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	completed := types.ProjectStatusCompleted

	_, err := UpdateProject(gdb, project.ID, ProjectPatch{Status: &completed}, pm)
	wantKind(t, err, KindConflict)

	finished := types.TaskStatusFinished
	if _, err := UpdateTask(gdb, task.ID, TaskPatch{Status: &finished}, pm); err != nil {
		t.Fatalf("Failed to finish task: %v", err)
	}

	updated, err := UpdateProject(gdb, project.ID, ProjectPatch{Status: &completed}, pm)
	if err != nil {
		t.Fatalf("Expected completion to succeed once tasks are finished: %v", err)
	}

	if updated.Status != types.ProjectStatusCompleted {
		t.Errorf("Expected status COMPLETED, got %s", updated.Status)
	}

	var persisted models.Project
	if err := gdb.First(&persisted, project.ID).Error; err != nil {
		t.Fatalf("Failed to reload project: %v", err)
	}

	if persisted.Status != types.ProjectStatusCompleted {
		t.Errorf("Expected persisted status COMPLETED, got %s", persisted.Status)
	}
}

func TestLastPMProtection(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	other := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now())

	err := RemoveProjectMember(gdb, project.ID, pm.ID, pm)
	wantKind(t, err, KindConflict)

	_, err = UpdateMemberRole(gdb, project.ID, pm.ID, types.ProjectRoleMember, pm)
	wantKind(t, err, KindConflict)

	if _, err := AddProjectMember(gdb, project.ID, other.ID, types.ProjectRolePM, pm); err != nil {
		t.Fatalf("Failed to add second PM: %v", err)
	}

	// With two PMs either can be removed or downgraded
	if err := RemoveProjectMember(gdb, project.ID, pm.ID, other); err != nil {
		t.Fatalf("Expected removal of non-last PM to succeed: %v", err)
	}

	err = RemoveProjectMember(gdb, project.ID, other.ID, other)
	wantKind(t, err, KindConflict)
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now())

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleClient, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	_, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleClient, pm)
	wantKind(t, err, KindConflict)
}

func TestRemoveMemberCascadesAssignments(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleMember, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	first := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)
	second := createTestTask(t, gdb, project.ID, "Build", time.Now(), pm)

	for _, task := range []models.Task{first, second} {
		if _, err := AddTaskAssignee(gdb, task.ID, member.ID, pm); err != nil {
			t.Fatalf("Failed to assign task %d: %v", task.ID, err)
		}
	}

	if err := RemoveProjectMember(gdb, project.ID, member.ID, pm); err != nil {
		t.Fatalf("Failed to remove member: %v", err)
	}

	var remaining int64
	if err := gdb.Model(&models.TaskAssignee{}).Where("user_id = ?", member.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("Failed to count assignments: %v", err)
	}

	if remaining != 0 {
		t.Errorf("Expected all assignments removed, %d remain", remaining)
	}

	var notification models.Notification
	err := gdb.Where("user_id = ? AND status = ?", member.ID, types.NotifyMemberRemoved).First(&notification).Error
	if err != nil {
		t.Errorf("Expected a removal notification for the member: %v", err)
	}
}

func TestRemoveNonMemberNotFound(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	stranger := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now())

	err := RemoveProjectMember(gdb, project.ID, stranger.ID, pm)
	wantKind(t, err, KindNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	if _, err := AddTaskComment(gdb, task.ID, "looks good", pm); err != nil {
		t.Fatalf("Failed to add comment: %v", err)
	}

	if err := DeleteProject(gdb, project.ID, pm); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	checks := map[string]int64{}

	var count int64
	gdb.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count)
	checks["tasks"] = count
	gdb.Model(&models.TaskComment{}).Where("task_id = ?", task.ID).Count(&count)
	checks["comments"] = count
	gdb.Model(&models.TaskHistory{}).Where("task_id = ?", task.ID).Count(&count)
	checks["history"] = count
	gdb.Model(&models.ProjectMembership{}).Where("project_id = ?", project.ID).Count(&count)
	checks["memberships"] = count

	for name, remaining := range checks {
		if remaining != 0 {
			t.Errorf("Expected no %s after project delete, got %d", name, remaining)
		}
	}
}

func TestListUserProjects(t *testing.T) {
	gdb := openTestDB(t)
	alice := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	bob := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	admin := createUser(t, gdb, "Carol", types.GlobalRoleAdmin)

	createTestProject(t, gdb, alice, "Alpha", time.Now())
	createTestProject(t, gdb, bob, "Beta", time.Now())

	mine, err := ListUserProjects(gdb, alice)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}

	if len(mine) != 1 || mine[0].Name != "Alpha" {
		t.Errorf("Expected Alice to see only Alpha, got %d projects", len(mine))
	}

	all, err := ListUserProjects(gdb, admin)
	if err != nil {
		t.Fatalf("Failed to list projects as admin: %v", err)
	}

	if len(all) != 2 {
		t.Errorf("Expected admin to see all projects, got %d", len(all))
	}
}
