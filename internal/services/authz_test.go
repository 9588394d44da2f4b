package services

import (
	"testing"
	"time"

	"github.com/taskforge-dev/taskforge/internal/types"
)

func TestRoleOfResolution(t *testing.T) {
	gdb := openTestDB(t)
	pm := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	member := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)
	outsider := createUser(t, gdb, "Carol", types.GlobalRoleEmployee)
	admin := createUser(t, gdb, "Dave", types.GlobalRoleAdmin)

	project := createTestProject(t, gdb, pm, "Launch", time.Now())

	if _, err := AddProjectMember(gdb, project.ID, member.ID, types.ProjectRoleClient, pm); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	role, ok := RoleOf(gdb, pm, project.ID)
	if !ok || role != types.ProjectRolePM {
		t.Errorf("Expected creator to resolve to PM, got %q ok=%v", role, ok)
	}

	role, ok = RoleOf(gdb, member, project.ID)
	if !ok || role != types.ProjectRoleClient {
		t.Errorf("Expected member to resolve to CLIENT, got %q ok=%v", role, ok)
	}

	if _, ok := RoleOf(gdb, outsider, project.ID); ok {
		t.Error("Expected non-member to resolve to no role")
	}

	// Admin short-circuits before any membership lookup
	role, ok = RoleOf(gdb, admin, project.ID)
	if !ok || role != types.ProjectRolePM {
		t.Errorf("Expected admin to resolve to PM, got %q ok=%v", role, ok)
	}

	role, ok = RoleOf(gdb, admin, 9999)
	if !ok || role != types.ProjectRolePM {
		t.Errorf("Expected admin to resolve to PM even off-project, got %q ok=%v", role, ok)
	}
}
