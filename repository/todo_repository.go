package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todoPlanManagement/models"
)

const todoColumns = `id, user_id, title, deadline, done, created_at`

// TodoRepository stores to-dos. Every query is scoped to the owning user.
type TodoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (*models.Todo, error) {
	var t models.Todo
	var deadline, created int64
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &deadline, &t.Done, &created); err != nil {
		return nil, err
	}
	t.Deadline = models.FromUnixMilli(deadline)
	t.CreatedAt = models.FromUnixMilli(created)
	return &t, nil
}

// queryTodos returns the user's to-dos in creation order; never nil.
func queryTodos(ctx context.Context, d *sql.DB, userID string) ([]*models.Todo, error) {
	rows, err := d.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	out := []*models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns the user's to-dos in creation order.
func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return queryTodos(ctx, r.db, userID)
}

// GetByID fetches one of the user's to-dos.
func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTodo(r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// CreateWithinQuota inserts t for t.UserID. The insert only happens when the
// owner is pro or owns fewer than freeLimit to-dos, checked in the same
// statement. ID and CreatedAt are assigned here; Done starts false.
func (r *TodoRepository) CreateWithinQuota(ctx context.Context, t *models.Todo, freeLimit int) (*models.Todo, error) {
	if t == nil {
		return nil, errors.New("todo is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	created := &models.Todo{
		ID:        uuid.NewString(),
		UserID:    t.UserID,
		Title:     t.Title,
		Deadline:  t.Deadline,
		CreatedAt: models.NewTimestamp(time.Now()),
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO todos (id, user_id, title, deadline, done, created_at)
        SELECT ?, u.id, ?, ?, 0, ? FROM users u
        WHERE u.id = ? AND (u.pro = 1 OR (SELECT COUNT(*) FROM todos c WHERE c.user_id = u.id) < ?)`,
		created.ID, created.Title, created.Deadline.UnixMilli(), created.CreatedAt.UnixMilli(), created.UserID, freeLimit)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 1 {
		return created, nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, t.UserID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOwnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return nil, ErrQuotaExceeded
}

// Update overwrites title and deadline, keeping id, done and created_at.
func (r *TodoRepository) Update(ctx context.Context, userID, id, title string, deadline models.Timestamp) (*models.Todo, error) {
	return r.execAndGet(ctx, userID, id, `UPDATE todos SET title = ?, deadline = ? WHERE id = ? AND user_id = ?`,
		title, deadline.UnixMilli(), id, userID)
}

// MarkDone sets done; repeating it leaves done set.
func (r *TodoRepository) MarkDone(ctx context.Context, userID, id string) (*models.Todo, error) {
	return r.execAndGet(ctx, userID, id, `UPDATE todos SET done = 1 WHERE id = ? AND user_id = ?`, id, userID)
}

func (r *TodoRepository) execAndGet(ctx context.Context, userID, id, stmt string, args ...any) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes one of the user's to-dos and reports whether it existed.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
