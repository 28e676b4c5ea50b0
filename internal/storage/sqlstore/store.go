package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"tasktrack/internal/models"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

const taskColumns = `id, name, deadline, total_steps, completed_steps, step_name, type, image_url`

// Store wraps access to the tasks table and exposes high level helpers.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *logrus.Logger
}

// Open connects to the database named by databaseURL and runs the migrations.
func Open(databaseURL string, logger *logrus.Logger) (*Store, error) {
	d, err := parseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	if err := ensureDir(d.sqlitePath()); err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driver, d.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}

	if d.singleConn {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}

	s := &Store{db: conn, dialect: d, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.WithField("driver", d.driver).Info("database ready")
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver reports the database/sql driver in use.
func (s *Store) Driver() string {
	return s.dialect.driver
}

func ensureDir(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	for _, stmt := range s.dialect.migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateTask inserts a task and returns it as stored, id included.
func (s *Store) CreateTask(ctx context.Context, t models.NewTask) (models.Task, error) {
	const insert = `INSERT INTO tasks(name, deadline, total_steps, completed_steps, step_name, type, image_url) VALUES(?, ?, ?, ?, ?, ?, ?)`
	args := []any{t.Name, t.Deadline, t.TotalSteps, t.CompletedSteps, t.StepName, t.Type, t.ImageURL}

	var id int64
	if s.dialect.returning {
		if err := s.db.QueryRowContext(ctx, s.dialect.rebind(insert+` RETURNING id`), args...).Scan(&id); err != nil {
			return models.Task{}, fmt.Errorf("insert task: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, s.dialect.rebind(insert), args...)
		if err != nil {
			return models.Task{}, fmt.Errorf("insert task: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return models.Task{}, fmt.Errorf("task id: %w", err)
		}
	}
	return s.GetTask(ctx, id)
}

// ListTasks returns every task in id order.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// AddStep advances completed_steps by one, saturating at total_steps.
// The read and the write happen in one statement, so concurrent calls on the
// same task do not lose increments.
func (s *Store) AddStep(ctx context.Context, id int64) error {
	const update = `UPDATE tasks SET completed_steps = CASE
            WHEN completed_steps + 1 < total_steps THEN completed_steps + 1
            ELSE total_steps
        END WHERE id = ?`

	res, err := s.db.ExecContext(ctx, s.dialect.rebind(update), id)
	if err != nil {
		return fmt.Errorf("add step: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add step: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t        models.Task
		imageURL sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &t.Deadline, &t.TotalSteps, &t.CompletedSteps, &t.StepName, &t.Type, &imageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, err
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	if imageURL.Valid {
		t.ImageURL = &imageURL.String
	}
	return t, nil
}
