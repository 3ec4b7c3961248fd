package service

import (
	"context"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
)

// taskModifyRoles may create, update and delete tasks and subtasks; any
// project role may read.
var taskModifyRoles = []string{entity.RoleAdmin, entity.RoleProjectAdmin}

// TaskService authorizes task-level routes itself: task and subtask ids do
// not carry a project id in the URL, so the service loads the task first and
// gates on its project.
type TaskService struct {
	tasks       *repository.TaskRepository
	subTasks    *repository.SubTaskRepository
	users       *repository.UserRepository
	permissions *PermissionService
}

func NewTaskService(
	tasks *repository.TaskRepository,
	subTasks *repository.SubTaskRepository,
	users *repository.UserRepository,
	permissions *PermissionService,
) *TaskService {
	return &TaskService{
		tasks:       tasks,
		subTasks:    subTasks,
		users:       users,
		permissions: permissions,
	}
}

func (s *TaskService) ListByProject(ctx context.Context, projectID uint64) ([]*entity.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) Get(ctx context.Context, actorID, taskID uint64) (*entity.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, entity.AvailableUserRoles); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, actorID, projectID uint64, title, description, assignedTo, status string) (*entity.Task, error) {
	assignee, err := s.users.FindByUsername(ctx, assignedTo)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, ErrAssigneeNotFound
	}

	now := time.Now()
	task := &entity.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		AssignedTo:  assignee.ID,
		AssignedBy:  actorID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, actorID, taskID uint64, title, description, assignedTo, status string) (*entity.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, taskModifyRoles); err != nil {
		return nil, err
	}

	assignee, err := s.users.FindByUsername(ctx, assignedTo)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, ErrAssigneeNotFound
	}

	task.Title = title
	task.Description = description
	task.AssignedTo = assignee.ID
	task.Status = status
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actorID, taskID uint64) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, taskModifyRoles); err != nil {
		return err
	}

	rows, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) ListSubTasks(ctx context.Context, actorID, taskID uint64) ([]*entity.SubTask, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, entity.AvailableUserRoles); err != nil {
		return nil, err
	}
	return s.subTasks.ListByTask(ctx, taskID)
}

func (s *TaskService) CreateSubTask(ctx context.Context, actorID, taskID uint64, title string, isCompleted bool) (*entity.SubTask, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, taskModifyRoles); err != nil {
		return nil, err
	}

	now := time.Now()
	subTask := &entity.SubTask{
		TaskID:      taskID,
		Title:       title,
		IsCompleted: isCompleted,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.subTasks.Create(ctx, subTask); err != nil {
		return nil, err
	}
	return subTask, nil
}

func (s *TaskService) UpdateSubTask(ctx context.Context, actorID, subTaskID uint64, title string, isCompleted bool) (*entity.SubTask, error) {
	subTask, task, err := s.findSubTask(ctx, subTaskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, taskModifyRoles); err != nil {
		return nil, err
	}

	subTask.Title = title
	subTask.IsCompleted = isCompleted
	if err := s.subTasks.Update(ctx, subTask); err != nil {
		return nil, err
	}
	return subTask, nil
}

func (s *TaskService) DeleteSubTask(ctx context.Context, actorID, subTaskID uint64) error {
	subTask, task, err := s.findSubTask(ctx, subTaskID)
	if err != nil {
		return err
	}
	if _, err := s.permissions.Authorize(ctx, actorID, task.ProjectID, taskModifyRoles); err != nil {
		return err
	}

	_, err = s.subTasks.Delete(ctx, subTask.ID)
	return err
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*entity.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) findSubTask(ctx context.Context, subTaskID uint64) (*entity.SubTask, *entity.Task, error) {
	subTask, err := s.subTasks.FindByID(ctx, subTaskID)
	if err != nil {
		return nil, nil, err
	}
	if subTask == nil {
		return nil, nil, ErrSubTaskNotFound
	}

	task, err := s.findTask(ctx, subTask.TaskID)
	if err != nil {
		return nil, nil, err
	}
	return subTask, task, nil
}
