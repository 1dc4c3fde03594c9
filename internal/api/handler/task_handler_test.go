package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/despi4/secure-todo-api/internal/api/middleware"
	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

type stubTaskService struct {
	createFn func(ctx context.Context, identity domain.Identity, in ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, identity domain.Identity) ([]*domain.Task, error)
	getFn    func(ctx context.Context, id string) (*domain.Task, error)
	updateFn func(ctx context.Context, identity domain.Identity, id string, status domain.TaskStatus) (*domain.Task, error)
	deleteFn func(ctx context.Context, identity domain.Identity, id string) error
}

func (s *stubTaskService) Create(ctx context.Context, identity domain.Identity, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, identity, in)
}

func (s *stubTaskService) ListMine(ctx context.Context, identity domain.Identity) ([]*domain.Task, error) {
	return s.listFn(ctx, identity)
}

func (s *stubTaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.getFn(ctx, id)
}

func (s *stubTaskService) UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.TaskStatus) (*domain.Task, error) {
	return s.updateFn(ctx, identity, id, status)
}

func (s *stubTaskService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	return s.deleteFn(ctx, identity, id)
}

var alice = domain.Identity{Subject: "u1", Role: domain.RoleUser, Email: "a@example.com"}

func sampleTask() *domain.Task {
	created := time.Date(2026, 2, 3, 4, 5, 6, 7000000, time.UTC)
	return &domain.Task{
		ID:          "t1",
		Title:       "T",
		Description: "D",
		Status:      domain.StatusPending,
		AuthorID:    "u1",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func withParam(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestTaskHandler_Create(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, identity domain.Identity, in ports.CreateTaskInput) (*domain.Task, error) {
			if identity != alice || in.Title != "T" || in.Description != "D" {
				t.Fatalf("unexpected args: %+v %+v", identity, in)
			}
			return sampleTask(), nil
		},
	}
	handler := NewTaskHandler(stub, nil)

	c, rec := jsonContext(e, http.MethodPost, "/tasks", `{"title":"T","description":"D","status":"completed","authorId":"u9"}`)
	middleware.SetIdentity(c, alice)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	task := resp["task"]
	for key, want := range map[string]any{
		"_id":       "t1",
		"title":     "T",
		"status":    "pending",
		"authorId":  "u1",
		"createdAt": "2026-02-03T04:05:06.007Z",
	} {
		if task[key] != want {
			t.Fatalf("%s = %v, want %v", key, task[key], want)
		}
	}
}

func TestTaskHandler_Create_RequiresIdentity(t *testing.T) {
	e := newEcho()
	handler := NewTaskHandler(&stubTaskService{}, nil)

	c, _ := jsonContext(e, http.MethodPost, "/tasks", `{"title":"T","description":"D"}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaskHandler_Create_Validation(t *testing.T) {
	e := newEcho()
	handler := NewTaskHandler(&stubTaskService{}, nil)

	c, _ := jsonContext(e, http.MethodPost, "/tasks", `{"title":"","description":42}`)
	middleware.SetIdentity(c, alice)

	var ve *domain.ValidationError
	if err := handler.Create(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Issues[0].Path != "description" {
		t.Fatalf("expected the type error on description, got %+v", ve.Issues)
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, identity domain.Identity) ([]*domain.Task, error) {
			return []*domain.Task{}, nil
		},
	}
	handler := NewTaskHandler(stub, nil)

	c, rec := jsonContext(e, http.MethodGet, "/tasks", "")
	middleware.SetIdentity(c, alice)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "{\"tasks\":[]}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestTaskHandler_Get_Public(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		getFn: func(ctx context.Context, id string) (*domain.Task, error) {
			if id != "t1" {
				return nil, domain.ErrTaskNotFound
			}
			return sampleTask(), nil
		},
	}
	handler := NewTaskHandler(stub, nil)

	c, rec := jsonContext(e, http.MethodGet, "/tasks/t1", "")
	if err := handler.Get(withParam(c, "t1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodGet, "/tasks/zzz", "")
	if err := handler.Get(withParam(c, "zzz")); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Patch(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		updateFn: func(ctx context.Context, identity domain.Identity, id string, status domain.TaskStatus) (*domain.Task, error) {
			if identity.Subject != "u2" {
				return nil, domain.ErrForbidden
			}
			task := sampleTask()
			task.Status = status
			return task, nil
		},
	}
	handler := NewTaskHandler(stub, nil)

	c, _ := jsonContext(e, http.MethodPatch, "/tasks/t1", `{"status":"completed"}`)
	middleware.SetIdentity(c, alice)
	if err := handler.Patch(withParam(c, "t1")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPatch, "/tasks/t1", `{"status":"archived"}`)
	middleware.SetIdentity(c, alice)
	var ve *domain.ValidationError
	if err := handler.Patch(withParam(c, "t1")); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Issues[0].Message != "status must be one of: pending, completed" {
		t.Fatalf("unexpected message %q", ve.Issues[0].Message)
	}

	c, rec := jsonContext(e, http.MethodPatch, "/tasks/t1", `{"status":"completed"}`)
	middleware.SetIdentity(c, domain.Identity{Subject: "u2", Role: domain.RoleAdmin})
	if err := handler.Patch(withParam(c, "t1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	e := newEcho()
	var deleted string
	stub := &stubTaskService{
		deleteFn: func(ctx context.Context, identity domain.Identity, id string) error {
			deleted = id
			return nil
		},
	}
	handler := NewTaskHandler(stub, nil)

	c, rec := jsonContext(e, http.MethodDelete, "/tasks/t1", "")
	middleware.SetIdentity(c, alice)
	if err := handler.Delete(withParam(c, "t1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
	if deleted != "t1" {
		t.Fatalf("expected t1 to be deleted, got %q", deleted)
	}
}
