package services

import (
	"log"
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/internal/ws"
	"gorm.io/gorm"
)

// notificationPayload is what goes over the websocket channel. Delivery is
// fire-and-forget: the stored row is the only durable trace.
type notificationPayload struct {
	Type      string    `json:"type"`
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// createNotification persists a notification row inside the caller's
// transaction. The push happens after commit, via pushNotifications.
func createNotification(tx *gorm.DB, userID uint, status, message string) (models.Notification, error) {
	notification := models.Notification{
		UserID:  userID,
		Status:  status,
		Message: message,
	}

	if err := tx.Create(&notification).Error; err != nil {
		return models.Notification{}, err
	}

	return notification, nil
}

func pushNotifications(notifications []models.Notification) {
	for _, n := range notifications {
		ws.PushToUser(n.UserID, notificationPayload{
			Type:      "notification",
			ID:        n.ID,
			Status:    n.Status,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
}

// NotifyUser persists and pushes a single notification outside any larger
// transaction. Used by the reminder scheduler.
func NotifyUser(gdb *gorm.DB, userID uint, status, message string) error {
	notification, err := createNotification(gdb, userID, status, message)

	if err != nil {
		return err
	}

	pushNotifications([]models.Notification{notification})
	return nil
}

func requireAuthorized(actor models.User) error {
	if actor.Status != types.UserStatusAuthorized {
		return Forbidden("Account is not authorized")
	}
	return nil
}

func ListNotifications(gdb *gorm.DB, actor models.User) ([]models.Notification, error) {
	if err := requireAuthorized(actor); err != nil {
		return nil, err
	}

	var notifications []models.Notification

	err := gdb.Where("user_id = ?", actor.ID).Order("created_at DESC").Find(&notifications).Error

	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func getOwnedNotification(gdb *gorm.DB, notificationID uint, actor models.User) (models.Notification, error) {
	var notification models.Notification

	if err := gdb.First(&notification, notificationID).Error; err != nil {
		return models.Notification{}, NotFound("Notification not found")
	}

	if notification.UserID != actor.ID {
		return models.Notification{}, Forbidden("Notification belongs to another user")
	}

	return notification, nil
}

func MarkNotificationRead(gdb *gorm.DB, notificationID uint, read bool, actor models.User) (models.Notification, error) {
	if err := requireAuthorized(actor); err != nil {
		return models.Notification{}, err
	}

	notification, err := getOwnedNotification(gdb, notificationID, actor)

	if err != nil {
		return models.Notification{}, err
	}

	notification.IsRead = read

	if err := gdb.Save(&notification).Error; err != nil {
		return models.Notification{}, err
	}

	return notification, nil
}

func MarkAllNotificationsRead(gdb *gorm.DB, actor models.User) error {
	if err := requireAuthorized(actor); err != nil {
		return err
	}

	return gdb.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Update("is_read", true).Error
}

func DeleteNotification(gdb *gorm.DB, notificationID uint, actor models.User) error {
	if err := requireAuthorized(actor); err != nil {
		return err
	}

	notification, err := getOwnedNotification(gdb, notificationID, actor)

	if err != nil {
		return err
	}

	if err := gdb.Unscoped().Delete(&notification).Error; err != nil {
		log.Printf("Failed to delete notification %d: %v", notificationID, err)
		return err
	}

	return nil
}

func DeleteAllNotifications(gdb *gorm.DB, actor models.User) error {
	if err := requireAuthorized(actor); err != nil {
		return err
	}

	return gdb.Unscoped().Where("user_id = ?", actor.ID).Delete(&models.Notification{}).Error
}
