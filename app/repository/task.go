package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
)

type TaskRepository struct {
	db executor
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) WithTx(tx *sql.Tx) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (project_id, title, description, assigned_to, assigned_by, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		task.ProjectID,
		task.Title,
		task.Description,
		task.AssignedTo,
		task.AssignedBy,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = uint64(id)
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint64) (*entity.Task, error) {
	query := `
		SELECT id, project_id, title, description, assigned_to, assigned_by, status, created_at, updated_at
		FROM tasks WHERE id = ?
	`
	task := &entity.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.AssignedTo,
		&task.AssignedBy,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID uint64) ([]*entity.Task, error) {
	query := `
		SELECT id, project_id, title, description, assigned_to, assigned_by, status, created_at, updated_at
		FROM tasks WHERE project_id = ? ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*entity.Task
	for rows.Next() {
		task := &entity.Task{}
		if err := rows.Scan(
			&task.ID,
			&task.ProjectID,
			&task.Title,
			&task.Description,
			&task.AssignedTo,
			&task.AssignedBy,
			&task.Status,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks SET title = ?, description = ?, assigned_to = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	task.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.AssignedTo,
		task.Status,
		task.UpdatedAt,
		task.ID,
	)
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	query := `DELETE FROM tasks WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type SubTaskRepository struct {
	db executor
}

func NewSubTaskRepository(db *sql.DB) *SubTaskRepository {
	return &SubTaskRepository{db: db}
}

func (r *SubTaskRepository) Create(ctx context.Context, subTask *entity.SubTask) error {
	query := `
		INSERT INTO subtasks (task_id, title, is_completed, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		subTask.TaskID,
		subTask.Title,
		subTask.IsCompleted,
		subTask.CreatedBy,
		subTask.CreatedAt,
		subTask.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	subTask.ID = uint64(id)
	return nil
}

func (r *SubTaskRepository) FindByID(ctx context.Context, id uint64) (*entity.SubTask, error) {
	query := `
		SELECT id, task_id, title, is_completed, created_by, created_at, updated_at
		FROM subtasks WHERE id = ?
	`
	subTask := &entity.SubTask{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&subTask.ID,
		&subTask.TaskID,
		&subTask.Title,
		&subTask.IsCompleted,
		&subTask.CreatedBy,
		&subTask.CreatedAt,
		&subTask.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return subTask, nil
}

func (r *SubTaskRepository) ListByTask(ctx context.Context, taskID uint64) ([]*entity.SubTask, error) {
	query := `
		SELECT id, task_id, title, is_completed, created_by, created_at, updated_at
		FROM subtasks WHERE task_id = ? ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subTasks []*entity.SubTask
	for rows.Next() {
		subTask := &entity.SubTask{}
		if err := rows.Scan(
			&subTask.ID,
			&subTask.TaskID,
			&subTask.Title,
			&subTask.IsCompleted,
			&subTask.CreatedBy,
			&subTask.CreatedAt,
			&subTask.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subTasks = append(subTasks, subTask)
	}
	return subTasks, rows.Err()
}

func (r *SubTaskRepository) Update(ctx context.Context, subTask *entity.SubTask) error {
	query := `
		UPDATE subtasks SET title = ?, is_completed = ?, updated_at = ?
		WHERE id = ?
	`
	subTask.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		subTask.Title,
		subTask.IsCompleted,
		subTask.UpdatedAt,
		subTask.ID,
	)
	return err
}

func (r *SubTaskRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	query := `DELETE FROM subtasks WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
