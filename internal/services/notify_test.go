package services

import (
	"testing"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func TestNotificationOwnershipGuard(t *testing.T) {
	gdb := openTestDB(t)
	owner := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	other := createUser(t, gdb, "Bob", types.GlobalRoleEmployee)

	if err := NotifyUser(gdb, owner.ID, types.NotifyProjectCreated, "hello"); err != nil {
		t.Fatalf("Failed to create notification: %v", err)
	}

	var notification models.Notification
	if err := gdb.Where("user_id = ?", owner.ID).First(&notification).Error; err != nil {
		t.Fatalf("Failed to load notification: %v", err)
	}

	_, err := MarkNotificationRead(gdb, notification.ID, true, other)
	wantKind(t, err, KindForbidden)

	err = DeleteNotification(gdb, notification.ID, other)
	wantKind(t, err, KindForbidden)

	marked, err := MarkNotificationRead(gdb, notification.ID, true, owner)
	if err != nil {
		t.Fatalf("Expected owner to mark read: %v", err)
	}

	if !marked.IsRead {
		t.Error("Expected notification to be read")
	}
}

func TestNotificationRequiresAuthorizedAccount(t *testing.T) {
	gdb := openTestDB(t)
	pending := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)
	pending.Status = types.UserStatusUnauthorized
	if err := gdb.Save(&pending).Error; err != nil {
		t.Fatalf("Failed to update user: %v", err)
	}

	_, err := ListNotifications(gdb, pending)
	wantKind(t, err, KindForbidden)

	err = MarkAllNotificationsRead(gdb, pending)
	wantKind(t, err, KindForbidden)
}

func TestMarkAllAndDeleteAll(t *testing.T) {
	gdb := openTestDB(t)
	owner := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)

	for i := 0; i < 3; i++ {
		if err := NotifyUser(gdb, owner.ID, types.NotifyProjectUpdated, "update"); err != nil {
			t.Fatalf("Failed to create notification: %v", err)
		}
	}

	if err := MarkAllNotificationsRead(gdb, owner); err != nil {
		t.Fatalf("Failed to mark all read: %v", err)
	}

	var unread int64
	gdb.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", owner.ID, false).Count(&unread)
	if unread != 0 {
		t.Errorf("Expected no unread notifications, got %d", unread)
	}

	if err := DeleteAllNotifications(gdb, owner); err != nil {
		t.Fatalf("Failed to delete all: %v", err)
	}

	var remaining int64
	gdb.Model(&models.Notification{}).Where("user_id = ?", owner.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("Expected no notifications after delete-all, got %d", remaining)
	}
}

func TestNotificationMissingIsNotFound(t *testing.T) {
	gdb := openTestDB(t)
	owner := createUser(t, gdb, "Alice", types.GlobalRoleEmployee)

	_, err := MarkNotificationRead(gdb, 42, true, owner)
	wantKind(t, err, KindNotFound)
}
