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

type CreateTaskRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	Priority    string     `json:"priority"`
}

// UpdateTaskRequest uses pointer fields: absent fields are left unchanged.
type UpdateTaskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
}

type AddAssigneeRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type AddCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type AddDependencyRequest struct {
	DependsOnTaskID uint `json:"depends_on_task_id" binding:"required"`
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	ProjectID   uint       `json:"project_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
}

func taskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Name:        task.Name,
		Description: task.Description,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Priority:    task.Priority,
		Status:      task.Status,
	}
}

func CreateTask(ctx *gin.Context) {
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

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := services.CreateTask(db.DB, services.CreateTaskInput{
		ProjectID:   projectID,
		Name:        body.Name,
		Description: body.Description,
		StartDate:   body.StartDate,
		Priority:    body.Priority,
	}, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

func ListProjectTasks(ctx *gin.Context) {
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

	tasks, err := services.ListProjectTasks(db.DB, projectID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := services.GetTask(db.DB, taskID)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func UpdateTask(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := services.UpdateTask(db.DB, taskID, services.TaskPatch{
		Name:        body.Name,
		Description: body.Description,
		StartDate:   body.StartDate,
		Priority:    body.Priority,
		Status:      body.Status,
	}, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func AddTaskAssignee(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AddAssigneeRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignee, err := services.AddTaskAssignee(db.DB, taskID, body.UserID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"task_id": assignee.TaskID,
		"user_id": assignee.UserID,
	})
}

func RemoveTaskAssignee(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetParamUint(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.RemoveTaskAssignee(db.DB, taskID, userID, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func AddTaskComment(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AddCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := services.AddTaskComment(db.DB, taskID, body.Body, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":      comment.ID,
		"task_id": comment.TaskID,
		"user_id": comment.UserID,
		"body":    comment.Body,
	})
}

func ListTaskComments(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := services.ListTaskComments(db.DB, taskID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, comments)
}

func DeleteTaskComment(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := utils.GetParamUint(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteTaskComment(db.DB, commentID, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func UploadTaskFile(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	src, err := fileHeader.Open()

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	file, err := services.AttachTaskFile(db.DB, taskID, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), src, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":        file.ID,
		"task_id":   file.TaskID,
		"file_name": file.FileName,
		"size":      file.Size,
	})
}

func ListTaskFiles(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := services.ListTaskFiles(db.DB, taskID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, files)
}

func DeleteTaskFile(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	fileID, err := utils.GetParamUint(ctx, "file_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteTaskFile(db.DB, fileID, actor); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListTaskHistory(ctx *gin.Context) {
	actor, err := utils.CurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := services.ListTaskHistory(db.DB, taskID, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, history)
}

func AddTaskDependency(ctx *gin.Context) {
	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AddDependencyRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dependency, err := services.AddTaskDependency(db.DB, taskID, body.DependsOnTaskID)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"task_id":            dependency.TaskID,
		"depends_on_task_id": dependency.DependsOnTaskID,
	})
}

func RemoveTaskDependency(ctx *gin.Context) {
	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dependsOnTaskID, err := utils.GetParamUint(ctx, "depends_on_task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.RemoveTaskDependency(db.DB, taskID, dependsOnTaskID); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListTaskDependencies(ctx *gin.Context) {
	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := services.ListTaskDependencies(db.DB, taskID)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func ListTaskDependents(ctx *gin.Context) {
	taskID, err := utils.GetParamUint(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := services.ListTaskDependents(db.DB, taskID)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}
