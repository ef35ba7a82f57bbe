package repository

import (
	"context"
	"errors"

	"todoPlanManagement/models"
)

var (
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrQuotaExceeded is returned when a free user is at the to-do limit.
	ErrQuotaExceeded = errors.New("free plan quota exceeded")
	// ErrOwnerNotFound is returned when a to-do is created for a missing user.
	ErrOwnerNotFound = errors.New("owner not found")
)

// UserRepositoryI defines operations on User entities.
// Lookups return (nil, nil) when no user matches.
type UserRepositoryI interface {
	Create(ctx context.Context, name, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpgradeToPro(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}

// TodoRepositoryI defines operations on Todo entities, always scoped to the owner.
// Lookups and mutations return (nil, nil) when the owner has no such to-do.
type TodoRepositoryI interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Todo, error)
	GetByID(ctx context.Context, userID, id string) (*models.Todo, error)
	CreateWithinQuota(ctx context.Context, t *models.Todo, freeLimit int) (*models.Todo, error)
	Update(ctx context.Context, userID, id, title string, deadline models.Timestamp) (*models.Todo, error)
	MarkDone(ctx context.Context, userID, id string) (*models.Todo, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}
