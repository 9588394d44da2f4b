package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/middleware"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// CurrentActor rebuilds the service-layer actor from the authenticated user
// stashed in the gin context by the auth middleware.
func CurrentActor(ctx *gin.Context) (models.User, error) {
	authenticatedUser, err := GetCurrentUser(ctx)

	if err != nil {
		return models.User{}, err
	}

	actor := models.User{
		Name:       authenticatedUser.Name,
		Email:      authenticatedUser.Email,
		GlobalRole: authenticatedUser.GlobalRole,
		Status:     authenticatedUser.Status,
	}
	actor.ID = authenticatedUser.ID

	return actor, nil
}

func GetParamUint(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	value, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, fmt.Errorf("Invalid %s", name)
	}

	return uint(value), nil
}
