package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/query"
	"task-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements repository.TaskRepository on SQLite
type SQLiteRepository struct {
	db       *sql.DB
	clock    repository.Clock
	composer query.Composer
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock overrides the clock used for timestamps.
func WithClock(clock repository.Clock) Option {
	return func(r *SQLiteRepository) {
		r.clock = clock
	}
}

var _ repository.TaskRepository = (*SQLiteRepository)(nil)

// New opens the database at dbPath (":memory:" for a private in-memory
// database) and applies pending migrations.
func New(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection: every statement sees the same in-memory database and
	// writers never contend for the file lock.
	db.SetMaxOpenConns(1)

	logging.Debugf("opening sqlite task store at %s\n", dbPath)
	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	r := &SQLiteRepository{
		db:    db,
		clock: repository.SystemClock,
		composer: query.Composer{
			TimeArg: func(t time.Time) interface{} { return FormatTimeForDB(t) },
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Save inserts a new task or updates an existing one
func (r *SQLiteRepository) Save(ctx context.Context, task *domain.Task) error {
	now := r.clock()
	if task.ID == 0 {
		return r.insert(ctx, task, now)
	}
	return r.update(ctx, task, now)
}

func (r *SQLiteRepository) insert(ctx context.Context, task *domain.Task, now time.Time) error {
	query := `
	INSERT INTO tasks (title, description, status, priority, created_at, updated_at,
		completed_at, assignee, category, tags, estimated_hours, actual_hours, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query,
		task.Title,
		stringArg(task.Description),
		string(task.Status),
		string(task.Priority),
		FormatTimeForDB(now),
		FormatTimeForDB(now),
		FormatTimePtrForDB(task.CompletedAt),
		stringArg(task.Assignee),
		stringArg(task.Category),
		stringArg(task.Tags),
		intArg(task.EstimatedHours),
		intArg(task.ActualHours),
		stringArg(task.Notes),
	)
	if err != nil {
		return r.writeError("insert task", task, err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *SQLiteRepository) update(ctx context.Context, task *domain.Task, now time.Time) error {
	query := `
	UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, updated_at = ?,
		completed_at = ?, assignee = ?, category = ?, tags = ?, estimated_hours = ?,
		actual_hours = ?, notes = ?
	WHERE id = ?
	RETURNING created_at`

	var createdAt string
	err := r.db.QueryRowContext(ctx, query,
		task.Title,
		stringArg(task.Description),
		string(task.Status),
		string(task.Priority),
		FormatTimeForDB(now),
		FormatTimePtrForDB(task.CompletedAt),
		stringArg(task.Assignee),
		stringArg(task.Category),
		stringArg(task.Tags),
		intArg(task.EstimatedHours),
		intArg(task.ActualHours),
		stringArg(task.Notes),
		task.ID,
	).Scan(&createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return HandleNoRowsError(err, "task", strconv.FormatInt(task.ID, 10))
		}
		return r.writeError("update task", task, err)
	}

	created, err := ParseTimeFromDB(createdAt)
	if err != nil {
		return HandleDatabaseError("parse created_at", err)
	}
	task.CreatedAt = created
	task.UpdatedAt = now
	return nil
}

func (r *SQLiteRepository) writeError(operation string, task *domain.Task, err error) error {
	if IsUniqueViolation(err) {
		return errors.NewAlreadyExistsError("task", "title", task.Title).WithContext("constraint", "uq_tasks_title")
	}
	return HandleDatabaseError(operation, err)
}

// FindByID retrieves a task by its ID
func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTask, "task", strconv.FormatInt(id, 10), id)
}

// ExistsByID reports whether a task with the id exists
func (r *SQLiteRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := QueryScalar(ctx, r.db, `SELECT COUNT(*) FROM tasks WHERE id = ?`, id)
	return n > 0, err
}

// ExistsByTitle reports whether a task has exactly this title
func (r *SQLiteRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	n, err := QueryScalar(ctx, r.db, `SELECT COUNT(*) FROM tasks WHERE title = ?`, title)
	return n > 0, err
}

// DeleteByID deletes a task by its ID
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	return ExecuteWithRowsAffected(ctx, r.db, `DELETE FROM tasks WHERE id = ?`, "task", strconv.FormatInt(id, 10), id)
}

// Count returns the number of tasks
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	return QueryScalar(ctx, r.db, `SELECT COUNT(*) FROM tasks`)
}

// FindPage returns one page of the tasks matching filter
func (r *SQLiteRepository) FindPage(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	return r.findPage(ctx, r.composer.Filter(filter), page)
}

// Search returns one page of tasks whose title or description contains text
func (r *SQLiteRepository) Search(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	return r.findPage(ctx, r.composer.Search(text), page)
}

func (r *SQLiteRepository) findPage(ctx context.Context, where query.Clause, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	total, err := QueryScalar(ctx, r.db, `SELECT COUNT(*) FROM tasks`+where.Where(), where.Args...)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + taskColumns + ` FROM tasks` + where.Where() +
		` ORDER BY ` + r.composer.OrderBy(page) + ` LIMIT ? OFFSET ?`
	args := append(append([]interface{}{}, where.Args...), page.Size, page.Offset())

	tasks, err := QueryMultiple(ctx, r.db, q, ScanTasks, "tasks", args...)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(tasks, total, page), nil
}

// FindByStatus lists tasks in a status, most urgent and oldest first
func (r *SQLiteRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	return r.list(ctx, query.Clause{SQL: "status = ?", Args: []interface{}{string(status)}}, query.StatusListingOrder)
}

// FindByPriority lists tasks with the priority
func (r *SQLiteRepository) FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	return r.list(ctx, query.Clause{SQL: "priority = ?", Args: []interface{}{string(priority)}}, query.NativeOrder)
}

// FindByAssignee lists tasks assigned to exactly this name
func (r *SQLiteRepository) FindByAssignee(ctx context.Context, assignee string) ([]*domain.Task, error) {
	return r.list(ctx, query.Clause{SQL: "assignee = ?", Args: []interface{}{assignee}}, query.NativeOrder)
}

// FindOverdue lists pending tasks with an estimate created before cutoff
func (r *SQLiteRepository) FindOverdue(ctx context.Context, cutoff time.Time) ([]*domain.Task, error) {
	return r.list(ctx, r.composer.Overdue(cutoff), query.NativeOrder)
}

func (r *SQLiteRepository) list(ctx context.Context, where query.Clause, orderBy string) ([]*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks` + where.Where() + ` ORDER BY ` + orderBy
	return QueryMultiple(ctx, r.db, q, ScanTasks, "tasks", where.Args...)
}

// CountByStatus counts tasks per status
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	counts, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	result := make(map[domain.Status]int64, len(counts))
	for k, v := range counts {
		result[domain.Status(k)] = v
	}
	return result, nil
}

// CountByPriority counts tasks per priority
func (r *SQLiteRepository) CountByPriority(ctx context.Context) (map[domain.Priority]int64, error) {
	counts, err := r.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	result := make(map[domain.Priority]int64, len(counts))
	for k, v := range counts {
		result[domain.Priority(k)] = v
	}
	return result, nil
}

// countBy groups on a fixed, trusted column name.
func (r *SQLiteRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM tasks GROUP BY `+column)
	if err != nil {
		return nil, HandleDatabaseError("count tasks by "+column, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, HandleDatabaseError("scan count", err)
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, HandleDatabaseError("count tasks by "+column, err)
	}
	return counts, nil
}
