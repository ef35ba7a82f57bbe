// Package service holds the user and to-do operations behind the HTTP API.
//
// Each request is served by composing resolution steps (ResolveUser,
// ResolveUserByID, ResolveTodo, CheckQuota) that return the resolved
// entities or a typed *Error, followed by the operation itself.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"todoPlanManagement/models"
	"todoPlanManagement/repository"
)

// DefaultFreeLimit is the free-plan to-do cap.
const DefaultFreeLimit = 10

// Service bundles the repositories and plan settings.
type Service struct {
	Users     repository.UserRepositoryI
	Todos     repository.TodoRepositoryI
	FreeLimit int
}

// New returns a Service. A non-positive freeLimit falls back to DefaultFreeLimit.
func New(users repository.UserRepositoryI, todos repository.TodoRepositoryI, freeLimit int) *Service {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeLimit
	}
	return &Service{Users: users, Todos: todos, FreeLimit: freeLimit}
}

// ResolveUser finds the acting user by exact username.
func (s *Service) ResolveUser(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, newError(KindMissingHeader, "User not defined!")
	}
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, internal("get user", err)
	}
	if u == nil {
		return nil, newError(KindUserNotFound, "User %s not found!", username)
	}
	return u, nil
}

// ResolveUserByID finds a user by id.
func (s *Service) ResolveUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, internal("get user", err)
	}
	if u == nil {
		return nil, newError(KindUserNotFound, "User %s not found!", id)
	}
	return u, nil
}

// ResolveTodo resolves the acting user, then one of that user's to-dos.
func (s *Service) ResolveTodo(ctx context.Context, username, id string) (*models.User, *models.Todo, error) {
	u, err := s.ResolveUser(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if !ValidID(id) {
		return nil, nil, newError(KindInvalidIdentifier, "Invalid id")
	}
	for _, t := range u.Todos {
		if t.ID == id {
			return u, t, nil
		}
	}
	return nil, nil, newError(KindTodoNotFound, "Todo not found")
}

// CheckQuota passes pro users and free users below the limit.
func (s *Service) CheckQuota(u *models.User) error {
	if u.Pro || u.TodoCount() < s.FreeLimit {
		return nil
	}
	return newError(KindQuotaExceeded, "%s exceeded the free plan", u.Username)
}

// ValidID reports whether id is a canonical hyphenated RFC 4122 UUID
// (version 1 to 5) or the nil UUID.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	p, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	if p == uuid.Nil {
		return true
	}
	return p.Variant() == uuid.RFC4122 && p.Version() >= 1 && p.Version() <= 5
}

// CreateUserInput is the payload for CreateUser.
type CreateUserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// CreateUser creates a free-plan user with no to-dos.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Username) == "" {
		return nil, newError(KindInvalidInput, "name and username are required")
	}
	u, err := s.Users.Create(ctx, in.Name, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, newError(KindDuplicateUsername, "Username already exists")
		}
		return nil, internal("create user", err)
	}
	return u, nil
}

// GetUser returns the user with its to-dos.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.ResolveUserByID(ctx, id)
}

// UpgradeToPro moves a user to the pro plan. Upgrading twice fails.
func (s *Service) UpgradeToPro(ctx context.Context, id string) (*models.User, error) {
	u, err := s.ResolveUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Pro {
		return nil, newError(KindAlreadyPro, "Pro plan is already activated.")
	}
	ok, err := s.Users.UpgradeToPro(ctx, u.ID)
	if err != nil {
		return nil, internal("upgrade user", err)
	}
	if !ok {
		// Another request upgraded the user after it was resolved.
		return nil, newError(KindAlreadyPro, "Pro plan is already activated.")
	}
	u.Pro = true
	return u, nil
}

// ListTodos returns the acting user's to-dos in creation order.
func (s *Service) ListTodos(ctx context.Context, username string) ([]*models.Todo, error) {
	u, err := s.ResolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	todos, err := s.Todos.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, internal("list todos", err)
	}
	return todos, nil
}

// TodoInput is the payload for CreateTodo and UpdateTodo.
type TodoInput struct {
	Title    string            `json:"title"`
	Deadline *models.Timestamp `json:"deadline"`
}

func (in TodoInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return newError(KindInvalidInput, "title is required")
	}
	if in.Deadline == nil {
		return newError(KindInvalidInput, "deadline is required")
	}
	return nil
}

// CreateTodo appends a to-do to the acting user's list, subject to the plan quota.
func (s *Service) CreateTodo(ctx context.Context, username string, in TodoInput) (*models.Todo, error) {
	u, err := s.ResolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.CheckQuota(u); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	t, err := s.Todos.CreateWithinQuota(ctx, &models.Todo{UserID: u.ID, Title: in.Title, Deadline: *in.Deadline}, s.FreeLimit)
	switch {
	case errors.Is(err, repository.ErrQuotaExceeded):
		return nil, newError(KindQuotaExceeded, "%s exceeded the free plan", u.Username)
	case errors.Is(err, repository.ErrOwnerNotFound):
		return nil, newError(KindUserNotFound, "User %s not found!", username)
	case err != nil:
		return nil, internal("create todo", err)
	}
	return t, nil
}

// UpdateTodo overwrites the title and deadline of one of the acting user's to-dos.
func (s *Service) UpdateTodo(ctx context.Context, username, id string, in TodoInput) (*models.Todo, error) {
	u, t, err := s.ResolveTodo(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	updated, err := s.Todos.Update(ctx, u.ID, t.ID, in.Title, *in.Deadline)
	if err != nil {
		return nil, internal("update todo", err)
	}
	if updated == nil {
		return nil, newError(KindTodoNotFound, "Todo not found")
	}
	return updated, nil
}

// MarkTodoDone sets done on one of the acting user's to-dos.
func (s *Service) MarkTodoDone(ctx context.Context, username, id string) (*models.Todo, error) {
	u, t, err := s.ResolveTodo(ctx, username, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.Todos.MarkDone(ctx, u.ID, t.ID)
	if err != nil {
		return nil, internal("mark todo done", err)
	}
	if updated == nil {
		return nil, newError(KindTodoNotFound, "Todo not found")
	}
	return updated, nil
}

// DeleteTodo removes one of the acting user's to-dos.
func (s *Service) DeleteTodo(ctx context.Context, username, id string) error {
	u, t, err := s.ResolveTodo(ctx, username, id)
	if err != nil {
		return err
	}
	ok, err := s.Todos.Delete(ctx, u.ID, t.ID)
	if err != nil {
		return internal("delete todo", err)
	}
	if !ok {
		// Removed by a concurrent request after it was resolved.
		return newError(KindTodoNotFound, "Todo not found")
	}
	return nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.Users.Ping(ctx)
}
