package domain

import "context"

type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type TodoRepository interface {
	GetAll(ctx context.Context) ([]Todo, error)
	Create(ctx context.Context, text string) (*Todo, error)
	// SetCompleted returns ErrTodoNotFound for unknown IDs.
	SetCompleted(ctx context.Context, id int64, completed bool) (*Todo, error)
	Delete(ctx context.Context, id int64) error
}
