package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"TASKTRACKER_BACK-END/internal/models"
)

const uniqueViolation = "23505"

// taskColumns is the projection shared by every task query; it expects the
// task row aliased as t and the owner joined as u.
const taskColumns = `t.id, t.title, t.description, t.status, t.owner_id, t.created_at, t.updated_at, u.name, u.email`

// PostgresStore implements Store on top of a pgx connection pool
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore. The pool is owned by the store and closed by Close.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
		   FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
		   FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	var role string
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	row := s.db.QueryRow(ctx,
		`WITH t AS (
		     INSERT INTO tasks (id, title, description, status, owner_id, created_at, updated_at)
		     VALUES ($1, $2, $3, $4, $5, $6, $7)
		     RETURNING id, title, description, status, owner_id, created_at, updated_at
		 )
		 SELECT `+taskColumns+` FROM t JOIN users u ON u.id = t.owner_id`,
		task.ID, task.Title, task.Description, string(task.Status), task.OwnerID, task.CreatedAt, task.UpdatedAt)
	return scanTask(row)
}

func (s *PostgresStore) ListTasks(ctx context.Context, filter TaskFilter, offset, limit int) ([]models.Task, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+taskColumns+`
		   FROM tasks t
		   JOIN users u ON u.id = t.owner_id
		  WHERE t.owner_id = $1
		    AND ($2 = '' OR strpos(lower(t.title), lower($2)) > 0)
		  ORDER BY t.created_at DESC, t.id DESC
		  LIMIT $3 OFFSET $4`,
		filter.OwnerID, filter.Search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *PostgresStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM tasks t
		  WHERE t.owner_id = $1
		    AND ($2 = '' OR strpos(lower(t.title), lower($2)) > 0)`,
		filter.OwnerID, filter.Search).Scan(&total)
	return total, err
}

func (s *PostgresStore) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+taskColumns+`
		   FROM tasks t
		   JOIN users u ON u.id = t.owner_id
		  WHERE t.id = $1 AND t.owner_id = $2`, id, ownerID)
	return scanTask(row)
}

func (s *PostgresStore) UpdateTask(ctx context.Context, id, ownerID uuid.UUID, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	var status *string
	if patch.Status != nil {
		st := string(*patch.Status)
		status = &st
	}

	// NULL parameters keep the current column value
	row := s.db.QueryRow(ctx,
		`WITH t AS (
		     UPDATE tasks
		        SET title = COALESCE($3, title),
		            description = COALESCE($4, description),
		            status = COALESCE($5, status),
		            updated_at = $6
		      WHERE id = $1 AND owner_id = $2
		  RETURNING id, title, description, status, owner_id, created_at, updated_at
		 )
		 SELECT `+taskColumns+` FROM t JOIN users u ON u.id = t.owner_id`,
		id, ownerID, patch.Title, patch.Description, status, updatedAt)
	return scanTask(row)
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	s.db.Close()
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
		&t.Owner.Name, &t.Owner.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	t.Owner.ID = t.OwnerID
	return &t, nil
}
