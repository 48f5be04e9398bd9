// Package procedures declares the gateway's remote procedures and builds
// the immutable routing table served under /trpc.
package procedures

import (
	"context"

	"github.com/nitinmogalapalli/stackify/internal/rpc"
)

type createTodoInput struct {
	Text string `json:"text" validate:"required,min=1"`
}

type toggleTodoInput struct {
	ID        int64 `json:"id" validate:"required"`
	Completed *bool `json:"completed" validate:"required"`
}

type deleteTodoInput struct {
	ID int64 `json:"id" validate:"required"`
}

// NewRegistry builds the routing table. Called once at startup; the
// returned registry is read-only thereafter.
func NewRegistry() *rpc.Registry {
	r := rpc.NewRegistry()

	newInput, handler := rpc.NoInput(getAllTodos)
	r.Register(rpc.NewProcedure("todo.getAll", true, false, newInput, handler))

	newInput, handler = rpc.Typed(createTodo)
	r.Register(rpc.NewProcedure("todo.create", false, false, newInput, handler))

	newInput, handler = rpc.Typed(toggleTodo)
	r.Register(rpc.NewProcedure("todo.toggle", false, false, newInput, handler))

	newInput, handler = rpc.Typed(deleteTodo)
	r.Register(rpc.NewProcedure("todo.delete", false, false, newInput, handler))

	newInput, handler = rpc.NoInput(privateData)
	r.Register(rpc.NewProcedure("privateData", true, true, newInput, handler))

	return r
}

func getAllTodos(ctx context.Context, rc *rpc.Context) (any, error) {
	return rc.Svc.GetTodos(ctx)
}

func createTodo(ctx context.Context, rc *rpc.Context, input *createTodoInput) (any, error) {
	return rc.Svc.CreateTodo(ctx, input.Text)
}

func toggleTodo(ctx context.Context, rc *rpc.Context, input *toggleTodoInput) (any, error) {
	return rc.Svc.ToggleTodo(ctx, input.ID, *input.Completed)
}

func deleteTodo(ctx context.Context, rc *rpc.Context, input *deleteTodoInput) (any, error) {
	if err := rc.Svc.DeleteTodo(ctx, input.ID); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

// privateData is the protected probe used by the dashboard: it proves the
// caller's identity resolved to an authenticated user.
func privateData(_ context.Context, rc *rpc.Context) (any, error) {
	return map[string]string{
		"message": "This is private data",
		"user":    rc.Identity.User.Email,
	}, nil
}
