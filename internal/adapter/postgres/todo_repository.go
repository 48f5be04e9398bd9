package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nitinmogalapalli/stackify/internal/domain"
)

const todoColumns = `id, text, completed`

// TodoRepo implements domain.TodoRepository backed by PostgreSQL. All
// operations are single statements on the pool's stateless call path.
type TodoRepo struct {
	pool *pgxpool.Pool
}

func NewTodoRepo(pool *pgxpool.Pool) *TodoRepo {
	return &TodoRepo{pool: pool}
}

func (r *TodoRepo) GetAll(ctx context.Context) ([]domain.Todo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepo) Create(ctx context.Context, text string) (*domain.Todo, error) {
	var t domain.Todo
	err := r.pool.QueryRow(ctx, `
		INSERT INTO todos (text)
		VALUES ($1)
		RETURNING `+todoColumns,
		text).Scan(&t.ID, &t.Text, &t.Completed)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	return &t, nil
}

func (r *TodoRepo) SetCompleted(ctx context.Context, id int64, completed bool) (*domain.Todo, error) {
	var t domain.Todo
	err := r.pool.QueryRow(ctx, `
		UPDATE todos
		SET completed = $1
		WHERE id = $2
		RETURNING `+todoColumns,
		completed, id).Scan(&t.ID, &t.Text, &t.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return &t, nil
}

func (r *TodoRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}
