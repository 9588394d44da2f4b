package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	// A fresh connection would see a fresh in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return gdb
}

var userSeq int

func createUser(t *testing.T, gdb *gorm.DB, name, globalRole string) models.User {
	t.Helper()

	userSeq++
	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s%d@example.com", strings.ToLower(name), userSeq),
		PasswordHash: "x",
		GlobalRole:   globalRole,
		Status:       types.UserStatusAuthorized,
	}

	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}

	return user
}

func createTestProject(t *testing.T, gdb *gorm.DB, creator models.User, name string, start time.Time) models.Project {
	t.Helper()

	project, err := CreateProject(gdb, CreateProjectInput{
		Name:      name,
		StartDate: &start,
	}, creator)

	if err != nil {
		t.Fatalf("Failed to create project %s: %v", name, err)
	}

	return project
}

func createTestTask(t *testing.T, gdb *gorm.DB, projectID uint, name string, start time.Time, creator models.User) models.Task {
	t.Helper()

	task, err := CreateTask(gdb, CreateTaskInput{
		ProjectID: projectID,
		Name:      name,
		StartDate: &start,
	}, creator)

	if err != nil {
		t.Fatalf("Failed to create task %s: %v", name, err)
	}

	return task
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", kind)
	}

	if got := KindOf(err); got != kind {
		t.Fatalf("Expected %s error, got %q (%v)", kind, got, err)
	}
}
