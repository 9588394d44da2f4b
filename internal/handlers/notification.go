package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/services"
	"github.com/taskforge-dev/taskforge/internal/utils"
)

type MarkReadRequest struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

type NotificationResponse struct {
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func notificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Status:    notification.Status,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
	}
}

func ListNotifications(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notifications, err := services.ListNotifications(db.DB, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		response = append(response, notificationResponse(notification))
	}

	ctx.JSON(http.StatusOK, response)
}

func MarkNotificationRead(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, err := utils.GetParamUint(ctx, "notification_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body MarkReadRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	notification, err := services.MarkNotificationRead(db.DB, notificationID, *body.IsRead, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notificationResponse(notification))
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := services.MarkAllNotificationsRead(db.DB, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

func DeleteNotification(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, err := utils.GetParamUint(ctx, "notification_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteNotification(db.DB, notificationID, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func DeleteAllNotifications(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := services.DeleteAllNotifications(db.DB, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
