package entity

import "time"

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

var AvailableTaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

type Task struct {
	ID          uint64
	ProjectID   uint64
	Title       string
	Description string
	AssignedTo  uint64
	AssignedBy  uint64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SubTask struct {
	ID          uint64
	TaskID      uint64
	Title       string
	IsCompleted bool
	CreatedBy   uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
