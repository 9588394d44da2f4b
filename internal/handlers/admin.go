package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/internal/utils"
)

func requireAdmin(ctx *gin.Context) bool {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return false
	}

	if currentUser.GlobalRole != types.GlobalRoleAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return false
	}

	return true
}

func ListUsers(ctx *gin.Context) {
	if !requireAdmin(ctx) {
		return
	}

	var users []models.User

	if err := db.DB.Order("id").Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, userResponse(user))
	}

	ctx.JSON(http.StatusOK, gin.H{"users": response})
}

func setUserStatus(ctx *gin.Context, status string) {
	if !requireAdmin(ctx) {
		return
	}

	userID, err := utils.GetParamUint(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Status = status

	if err := db.DB.Save(&user).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// AuthorizeUser flips an account to AUTHORIZED.
func AuthorizeUser(ctx *gin.Context) {
	setUserStatus(ctx, types.UserStatusAuthorized)
}

// BlockUser flips an account to BLOCKED; the auth middleware rejects it on
// the next request.
func BlockUser(ctx *gin.Context) {
	setUserStatus(ctx, types.UserStatusBlocked)
}
