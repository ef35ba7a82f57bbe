package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todoPlanManagement/internal/db"
	"todoPlanManagement/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new free-plan user with a generated id and no to-dos.
// Returns ErrDuplicateUsername when the username is taken.
func (r *UserRepository) Create(ctx context.Context, name, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, name, username) VALUES (?, ?, ?)`, id, name, username)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &models.User{ID: id, Name: name, Username: username, Todos: []*models.Todo{}}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, name, username, pro FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, name, username, pro FROM users WHERE username = ?`, username)
}

// getOne scans a single user row and loads its to-dos in creation order.
func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Username, &u.Pro)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	todos, err := queryTodos(ctx, r.db, u.ID)
	if err != nil {
		return nil, err
	}
	u.Todos = todos
	return &u, nil
}

// UpgradeToPro moves the user to the pro plan. It reports false when the
// user does not exist or is already pro; the flag never goes back.
func (r *UserRepository) UpgradeToPro(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE users SET pro = 1 WHERE id = ? AND pro = 0`, id)
	if err != nil {
		return false, fmt.Errorf("upgrade user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Ping checks that the store is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
