package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"todoPlanManagement/internal/testutil"
	"todoPlanManagement/models"
	"todoPlanManagement/repository"
)

func newTestService(t *testing.T, limit int) *Service {
	t.Helper()
	d := testutil.OpenInMemoryDB(t)
	return New(repository.NewUserRepository(d), repository.NewTodoRepository(d), limit)
}

func todoInput(t *testing.T, title, deadline string) TodoInput {
	t.Helper()
	ts, err := models.ParseTimestamp(deadline)
	if err != nil {
		t.Fatalf("parse deadline: %v", err)
	}
	return TodoInput{Title: title, Deadline: &ts}
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("kind = %s, want %s (err=%v)", got, kind, err)
	}
}

func TestCreateUser(t *testing.T) {
	s := newTestService(t, 0)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserInput{Name: "Ann", Username: "ann"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Pro || len(u.Todos) != 0 || u.Todos == nil || !ValidID(u.ID) {
		t.Fatalf("unexpected user: %+v", u)
	}

	_, err = s.CreateUser(ctx, CreateUserInput{Name: "Imposter", Username: "ann"})
	wantKind(t, err, KindDuplicateUsername)
	var se *Error
	if !errors.As(err, &se) || se.Message != "Username already exists" {
		t.Fatalf("message = %+v", se)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil || got.Name != "Ann" {
		t.Fatalf("original user modified: %v %+v", err, got)
	}

	_, err = s.CreateUser(ctx, CreateUserInput{Name: "", Username: "x"})
	wantKind(t, err, KindInvalidInput)
	_, err = s.CreateUser(ctx, CreateUserInput{Name: "X", Username: ""})
	wantKind(t, err, KindInvalidInput)
	_, err = s.CreateUser(ctx, CreateUserInput{Name: "X", Username: "   "})
	wantKind(t, err, KindInvalidInput)
}

func TestResolveUser(t *testing.T) {
	s := newTestService(t, 0)
	ctx := context.Background()

	_, err := s.ResolveUser(ctx, "")
	wantKind(t, err, KindMissingHeader)

	_, err = s.ResolveUser(ctx, "unknown")
	wantKind(t, err, KindUserNotFound)
	var se *Error
	errors.As(err, &se)
	if se.Message != "User unknown not found!" {
		t.Fatalf("message = %q", se.Message)
	}

	_, err = s.ResolveUserByID(ctx, "not-an-id")
	wantKind(t, err, KindUserNotFound)
}

func TestResolveTodo(t *testing.T) {
	s := newTestService(t, 0)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, CreateUserInput{Name: "Ann", Username: "ann"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	td, err := s.CreateTodo(ctx, "ann", todoInput(t, "buy milk", "2024-01-01"))
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}

	_, _, err = s.ResolveTodo(ctx, "", td.ID)
	wantKind(t, err, KindMissingHeader)
	_, _, err = s.ResolveTodo(ctx, "bob", td.ID)
	wantKind(t, err, KindUserNotFound)

	malformed := []string{
		"123",
		"not-a-uuid",
		"{" + td.ID + "}",
		"urn:uuid:" + td.ID,
		uuid.New().String()[:35],
		"12345678-1234-1234-1234-123456789012", // variant nibble 1
		"12345678-1234-0234-8234-123456789012", // version 0
		"12345678-1234-6234-8234-123456789012", // version 6
		"12345678-1234-4234-c234-123456789012", // Microsoft variant
	}
	for _, bad := range malformed {
		_, _, err = s.ResolveTodo(ctx, "ann", bad)
		wantKind(t, err, KindInvalidIdentifier)
	}

	// Well-formed ids that match nothing are not found.
	for _, id := range []string{"12345678-1234-4234-8234-123456789012", "12345678-1234-1234-b234-123456789012", uuid.Nil.String()} {
		_, _, err = s.ResolveTodo(ctx, "ann", id)
		wantKind(t, err, KindTodoNotFound)
	}

	_, _, err = s.ResolveTodo(ctx, "ann", uuid.NewString())
	wantKind(t, err, KindTodoNotFound)

	u, got, err := s.ResolveTodo(ctx, "ann", td.ID)
	if err != nil || u.Username != "ann" || got.ID != td.ID {
		t.Fatalf("resolve: %v %+v %+v", err, u, got)
	}
}

func TestFreePlanQuota(t *testing.T) {
	s := newTestService(t, 0)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, CreateUserInput{Name: "Ann", Username: "ann"})
	for i := 0; i < DefaultFreeLimit; i++ {
		if _, err := s.CreateTodo(ctx, "ann", todoInput(t, fmt.Sprintf("t%d", i), "2024-01-01")); err != nil {
			t.Fatalf("create[%d]: %v", i, err)
		}
	}
	_, err := s.CreateTodo(ctx, "ann", todoInput(t, "eleventh", "2024-01-01"))
	wantKind(t, err, KindQuotaExceeded)
	var se *Error
	errors.As(err, &se)
	if se.Message != "ann exceeded the free plan" {
		t.Fatalf("message = %q", se.Message)
	}

	// Quota is checked before the body is validated.
	_, err = s.CreateTodo(ctx, "ann", TodoInput{})
	wantKind(t, err, KindQuotaExceeded)

	pro, err := s.UpgradeToPro(ctx, u.ID)
	if err != nil || !pro.Pro {
		t.Fatalf("upgrade: %v %+v", err, pro)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.CreateTodo(ctx, "ann", todoInput(t, "more", "2024-01-01")); err != nil {
			t.Fatalf("pro create[%d]: %v", i, err)
		}
	}
	list, _ := s.ListTodos(ctx, "ann")
	if len(list) != DefaultFreeLimit+5 {
		t.Fatalf("len = %d", len(list))
	}

	_, err = s.UpgradeToPro(ctx, u.ID)
	wantKind(t, err, KindAlreadyPro)
	_, err = s.UpgradeToPro(ctx, uuid.NewString())
	wantKind(t, err, KindUserNotFound)
}

func TestCheckQuota_CustomLimit(t *testing.T) {
	s := New(nil, nil, 2)
	free := &models.User{Username: "ann", Todos: []*models.Todo{{}, {}}}
	wantKind(t, s.CheckQuota(free), KindQuotaExceeded)
	free.Todos = free.Todos[:1]
	if err := s.CheckQuota(free); err != nil {
		t.Fatalf("below limit: %v", err)
	}
	pro := &models.User{Username: "bob", Pro: true, Todos: make([]*models.Todo, 50)}
	if err := s.CheckQuota(pro); err != nil {
		t.Fatalf("pro: %v", err)
	}
}

func TestTodoUpdates(t *testing.T) {
	s := newTestService(t, 0)
	ctx := context.Background()
	s.CreateUser(ctx, CreateUserInput{Name: "Ann", Username: "ann"})

	td, err := s.CreateTodo(ctx, "ann", todoInput(t, "buy milk", "2024-01-01"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if td.Done || td.Deadline.String() != "2024-01-01T00:00:00.000Z" {
		t.Fatalf("unexpected todo: %+v", td)
	}

	_, err = s.CreateTodo(ctx, "ann", TodoInput{Title: "no deadline"})
	wantKind(t, err, KindInvalidInput)
	_, err = s.CreateTodo(ctx, "ann", todoInput(t, "  ", "2024-01-01"))
	wantKind(t, err, KindInvalidInput)

	done, err := s.MarkTodoDone(ctx, "ann", td.ID)
	if err != nil || !done.Done {
		t.Fatalf("mark done: %v %+v", err, done)
	}

	upd, err := s.UpdateTodo(ctx, "ann", td.ID, todoInput(t, "buy bread", "2025-06-01T12:00:00Z"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.ID != td.ID || !upd.Done || upd.Title != "buy bread" || upd.Deadline.String() != "2025-06-01T12:00:00.000Z" {
		t.Fatalf("update result: %+v", upd)
	}
	_, err = s.UpdateTodo(ctx, "ann", td.ID, TodoInput{Title: "x"})
	wantKind(t, err, KindInvalidInput)

	again, err := s.MarkTodoDone(ctx, "ann", td.ID)
	if err != nil || !again.Done {
		t.Fatalf("second mark done: %v %+v", err, again)
	}
}

func TestDeleteTodo(t *testing.T) {
	s := newTestService(t, 0)
	ctx := context.Background()
	s.CreateUser(ctx, CreateUserInput{Name: "Ann", Username: "ann"})
	s.CreateUser(ctx, CreateUserInput{Name: "Bob", Username: "bob"})

	a1, _ := s.CreateTodo(ctx, "ann", todoInput(t, "a1", "2024-01-01"))
	a2, _ := s.CreateTodo(ctx, "ann", todoInput(t, "a2", "2024-01-01"))
	b1, _ := s.CreateTodo(ctx, "bob", todoInput(t, "b1", "2024-01-01"))

	// Bob cannot delete Ann's to-do.
	wantKind(t, s.DeleteTodo(ctx, "bob", a1.ID), KindTodoNotFound)

	if err := s.DeleteTodo(ctx, "ann", a1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantKind(t, s.DeleteTodo(ctx, "ann", a1.ID), KindTodoNotFound)

	annList, _ := s.ListTodos(ctx, "ann")
	if len(annList) != 1 || annList[0].ID != a2.ID {
		t.Fatalf("ann list = %+v", annList)
	}
	bobList, _ := s.ListTodos(ctx, "bob")
	if len(bobList) != 1 || bobList[0].ID != b1.ID {
		t.Fatalf("bob list = %+v", bobList)
	}
}

// failingUsers is a UserRepositoryI whose every call fails.
type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, string, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) GetByID(context.Context, string) (*models.User, error) { return nil, f.err }
func (f failingUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) UpgradeToPro(context.Context, string) (bool, error) { return false, f.err }
func (f failingUsers) Ping(context.Context) error                         { return f.err }

func TestStoreFailuresAreInternal(t *testing.T) {
	boom := errors.New("disk on fire")
	s := New(failingUsers{err: boom}, nil, 0)
	ctx := context.Background()

	_, err := s.ListTodos(ctx, "ann")
	wantKind(t, err, KindInternal)
	if !errors.Is(err, boom) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	var se *Error
	errors.As(err, &se)
	if se.Message != "internal error" {
		t.Fatalf("internal details leaked into message: %q", se.Message)
	}

	_, err = s.CreateUser(ctx, CreateUserInput{Name: "Ann", Username: "ann"})
	wantKind(t, err, KindInternal)
	if err := s.Ping(ctx); !errors.Is(err, boom) {
		t.Fatalf("ping: %v", err)
	}
	wantKind(t, errors.New("plain"), KindInternal)
}
