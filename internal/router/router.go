package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/handlers"
	"github.com/taskforge-dev/taskforge/internal/middleware"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.LogoutUser)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		admin := api.Group("/admin", middleware.AuthMiddleware())
		{
			admin.GET("/users", handlers.ListUsers)
			admin.POST("/users/:user_id/authorize", handlers.AuthorizeUser)
			admin.POST("/users/:user_id/block", handlers.BlockUser)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			// Membership endpoints
			projects.GET("/:project_id/members", handlers.ListProjectMembers)
			projects.POST("/:project_id/members", handlers.AddProjectMember)
			projects.PATCH("/:project_id/members/:user_id", handlers.UpdateProjectMemberRole)
			projects.DELETE("/:project_id/members/:user_id", handlers.RemoveProjectMember)

			// Task endpoints
			projects.POST("/:project_id/tasks", handlers.CreateTask)
			projects.GET("/:project_id/tasks", handlers.ListProjectTasks)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("/:task_id", handlers.GetTask)
			tasks.PATCH("/:task_id", handlers.UpdateTask)

			tasks.POST("/:task_id/assignees", handlers.AddTaskAssignee)
			tasks.DELETE("/:task_id/assignees/:user_id", handlers.RemoveTaskAssignee)

			tasks.POST("/:task_id/comments", handlers.AddTaskComment)
			tasks.GET("/:task_id/comments", handlers.ListTaskComments)
			tasks.DELETE("/:task_id/comments/:comment_id", handlers.DeleteTaskComment)

			tasks.POST("/:task_id/files", handlers.UploadTaskFile)
			tasks.GET("/:task_id/files", handlers.ListTaskFiles)
			tasks.DELETE("/:task_id/files/:file_id", handlers.DeleteTaskFile)

			tasks.GET("/:task_id/history", handlers.ListTaskHistory)

			tasks.POST("/:task_id/dependencies", handlers.AddTaskDependency)
			tasks.GET("/:task_id/dependencies", handlers.ListTaskDependencies)
			tasks.GET("/:task_id/dependents", handlers.ListTaskDependents)
			tasks.DELETE("/:task_id/dependencies/:depends_on_task_id", handlers.RemoveTaskDependency)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.PATCH("/:notification_id", handlers.MarkNotificationRead)
			notifications.POST("/read-all", handlers.MarkAllNotificationsRead)
			notifications.DELETE("/:notification_id", handlers.DeleteNotification)
			notifications.DELETE("", handlers.DeleteAllNotifications)
		}
	}

	return r
}
