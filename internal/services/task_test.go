package services

import (
	"testing"
	"time"

	"github.com/taskforge-dev/taskforge/internal/types"
)

func TestCreateTaskDateValidation(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, 5))

	early := time.Now().AddDate(0, 0, 1)
	_, err := CreateTask(gdb, CreateTaskInput{
		ProjectID: project.ID,
		Name:      "Design2",
		StartDate: &early,
	}, pm)
	wantKind(t, err, KindBadRequest)

	later := time.Now().AddDate(0, 0, 6)
	task, err := CreateTask(gdb, CreateTaskInput{
		ProjectID: project.ID,
		Name:      "Design",
		StartDate: &later,
	}, pm)
	if err != nil {
		t.Fatalf("Expected task after project start to succeed: %v", err)
	}

	if task.Status != types.TaskStatusToDo {
		t.Errorf("Expected initial status TO_DO, got %s", task.Status)
	}

	_, err = CreateTask(gdb, CreateTaskInput{ProjectID: 9999, Name: "Ghost", StartDate: &later}, pm)
	wantKind(t, err, KindNotFound)

	outsider := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	_, err = CreateTask(gdb, CreateTaskInput{ProjectID: project.ID, Name: "Nope", StartDate: &later}, outsider)
	wantKind(t, err, KindForbidden)
}

func TestTaskFinishBookkeeping(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	finished := types.TaskStatusFinished
	updated, err := UpdateTask(gdb, task.ID, TaskPatch{Status: &finished}, pm)
	if err != nil {
		t.Fatalf("Failed to finish task: %v", err)
	}

	if updated.EndDate == nil {
		t.Fatal("Expected end date to be stamped on FINISHED")
	}

	y1, m1, d1 := updated.EndDate.Date()
	y2, m2, d2 := time.Now().Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		t.Errorf("Expected end date to be today, got %v", updated.EndDate)
	}

	inProgress := types.TaskStatusInProgress
	reverted, err := UpdateTask(gdb, task.ID, TaskPatch{Status: &inProgress}, pm)
	if err != nil {
		t.Fatalf("Failed to revert task: %v", err)
	}

	if reverted.EndDate != nil {
		t.Errorf("Expected end date cleared on leaving FINISHED, got %v", reverted.EndDate)
	}
}

func TestUpdateTaskAuthorization(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleMember, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	name := "Design v2"

	// A plain member who is not an assignee may not edit
	_, err := UpdateTask(gdb, task.ID, TaskPatch{Name: &name}, member)
	wantKind(t, err, KindForbidden)

	if _, err := AddTaskAssignee(gdb, task.ID, member.ID, pm); err != nil {
		t.Fatalf("Failed to assign member: %v", err)
	}

	updated, err := UpdateTask(gdb, task.ID, TaskPatch{Name: &name}, member)
	if err != nil {
		t.Fatalf("Expected assignee update to succeed: %v", err)
	}

	if updated.Name != name {
		t.Errorf("Expected name %q, got %q", name, updated.Name)
	}
}

func TestUpdateTaskStartDateRevalidated(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, 3))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now().AddDate(0, 0, 4), pm)

	early := time.Now()
	_, err := UpdateTask(gdb, task.ID, TaskPatch{StartDate: &early}, pm)
	wantKind(t, err, KindBadRequest)
}

func TestAddAssigneeRules(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	outsider := createUser(t, gdb, "Carol", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleMember, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	_, err := AddTaskAssignee(gdb, task.ID, outsider.ID, pm)
	wantKind(t, err, KindBadRequest)

	if _, err := AddTaskAssignee(gdb, task.ID, member.ID, pm); err != nil {
		t.Fatalf("Failed to assign member: %v", err)
	}

	_, err = AddTaskAssignee(gdb, task.ID, member.ID, pm)
	wantKind(t, err, KindConflict)

	// Only a PM may assign
	_, err = AddTaskAssignee(gdb, task.ID, member.ID, member)
	wantKind(t, err, KindForbidden)
}

func TestTaskCommentPermissions(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	outsider := createUser(t, gdb, "Carol", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleClient, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	comment, err := AddTaskComment(gdb, task.ID, "first", member)
	if err != nil {
		t.Fatalf("Expected member comment to succeed: %v", err)
	}

	_, err = AddTaskComment(gdb, task.ID, "nope", outsider)
	wantKind(t, err, KindForbidden)

	_, err = AddTaskComment(gdb, task.ID, "", member)
	wantKind(t, err, KindBadRequest)

	// A different non-PM member cannot delete someone else's comment
	other := createUser(t, gdb, "Dan", types.GlobalRoleEmployee)
	if _, err := AddProjectMember(gdb, project.ID, other.ID, types.ProjectRoleMember, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	err = DeleteTaskComment(gdb, comment.ID, other)
	wantKind(t, err, KindForbidden)

	if err := DeleteTaskComment(gdb, comment.ID, pm); err != nil {
		t.Fatalf("Expected PM delete to succeed: %v", err)
	}

	err = DeleteTaskComment(gdb, comment.ID, pm)
	wantKind(t, err, KindNotFound)
}

func TestTaskHistoryRecorded(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	project := createTestProject(t, gdb, pm, "Launch", time.Now().AddDate(0, 0, -1))
	task := createTestTask(t, gdb, project.ID, "Design", time.Now(), pm)

	finished := types.TaskStatusFinished
	if _, err := UpdateTask(gdb, task.ID, TaskPatch{Status: &finished}, pm); err != nil {
		t.Fatalf("Failed to finish task: %v", err)
	}

	history, err := ListTaskHistory(gdb, task.ID, pm)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("Expected create + update history entries, got %d", len(history))
	}

	actions := map[string]bool{}
	for _, entry := range history {
		actions[entry.Action] = true
	}

	if !actions[types.HistoryTaskCreated] || !actions[types.HistoryTaskUpdated] {
		t.Errorf("Expected TASK_CREATED and TASK_UPDATED actions, got %v", actions)
	}
}
