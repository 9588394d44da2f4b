package types

// Global roles classify a user system-wide, independent of any project.
const (
	GlobalRoleClient   = "CLIENT"
	GlobalRoleAdmin    = "ADMIN"
	GlobalRoleEmployee = "EMPLOYEE"
)

// User account statuses.
const (
	UserStatusUnauthorized = "UNAUTHORIZED"
	UserStatusAuthorized   = "AUTHORIZED"
	UserStatusBlocked      = "BLOCKED"
)

// Project-scoped roles carried by a membership record.
const (
	ProjectRolePM     = "PM"
	ProjectRoleMember = "MEMBER"
	ProjectRoleClient = "CLIENT"
)

const (
	ProjectStatusPlanned    = "PLANNED"
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusCompleted  = "COMPLETED"
)

const (
	TaskPriorityCritical  = "CRITICAL"
	TaskPriorityImportant = "IMPORTANT"
	TaskPriorityOptional  = "OPTIONAL"
)

const (
	TaskStatusToDo       = "TO_DO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusFinished   = "FINISHED"
)

// Notification status tags carried on stored notifications and pushed
// over the websocket channel.
const (
	NotifyProjectCreated    = "PROJECT_CREATED"
	NotifyProjectUpdated    = "PROJECT_UPDATED"
	NotifyProjectDeleted    = "PROJECT_DELETED"
	NotifyMemberAdded       = "MEMBER_ADDED"
	NotifyMemberRemoved     = "MEMBER_REMOVED"
	NotifyMemberRoleChanged = "MEMBER_ROLE_CHANGED"
	NotifyTaskAssigned      = "TASK_ASSIGNED"
	NotifyTaskStatusChanged = "TASK_STATUS_CHANGED"
	NotifyTaskStartingSoon  = "TASK_STARTING_SOON"
)

// Task history actions.
const (
	HistoryTaskCreated     = "TASK_CREATED"
	HistoryTaskUpdated     = "TASK_UPDATED"
	HistoryAssigneeAdded   = "ASSIGNEE_ADDED"
	HistoryAssigneeRemoved = "ASSIGNEE_REMOVED"
	HistoryFileAttached    = "FILE_ATTACHED"
	HistoryFileRemoved     = "FILE_REMOVED"
)

func ValidProjectRole(role string) bool {
	switch role {
	case ProjectRolePM, ProjectRoleMember, ProjectRoleClient:
		return true
	}
	return false
}

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

func ValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityCritical, TaskPriorityImportant, TaskPriorityOptional:
		return true
	}
	return false
}

func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusFinished:
		return true
	}
	return false
}
