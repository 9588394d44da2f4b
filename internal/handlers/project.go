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

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProjectRequest uses pointer fields: absent fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type ProjectResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      string     `json:"status"`
}

type MemberResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func projectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Status:      project.Status,
	}
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, err := services.CreateProject(db.DB, services.CreateProjectInput{
		Name:        body.Name,
		Description: body.Description,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
	}, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := services.ListUserProjects(db.DB, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := services.GetProject(db.DB, projectID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := services.UpdateProject(db.DB, projectID, services.ProjectPatch{
		Name:        body.Name,
		Description: body.Description,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Status:      body.Status,
	}, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteProject(db.DB, projectID, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListProjectMembers(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberships, err := services.ListProjectMembers(db.DB, projectID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]MemberResponse, 0, len(memberships))
	for _, membership := range memberships {
		response = append(response, MemberResponse{
			UserID: membership.UserID,
			Name:   membership.User.Name,
			Email:  membership.User.Email,
			Role:   membership.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func AddProjectMember(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AddMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	membership, err := services.AddProjectMember(db.DB, projectID, body.UserID, body.Role, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user_id": membership.UserID,
		"role":    membership.Role,
	})
}

func RemoveProjectMember(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetParamUint(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.RemoveProjectMember(db.DB, projectID, userID, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func UpdateProjectMemberRole(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetParamUint(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetParamUint(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateMemberRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	membership, err := services.UpdateMemberRole(db.DB, projectID, userID, body.Role, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user_id": membership.UserID,
		"role":    membership.Role,
	})
}
