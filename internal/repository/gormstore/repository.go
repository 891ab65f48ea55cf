// Package gormstore is a TaskRepository on gorm, used for PostgreSQL and as a
// second SQLite implementation.
package gormstore

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/query"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repository implements repository.TaskRepository with gorm
type Repository struct {
	db       *gorm.DB
	clock    repository.Clock
	composer query.Composer
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the clock used for timestamps.
func WithClock(clock repository.Clock) Option {
	return func(r *Repository) {
		r.clock = clock
	}
}

var _ repository.TaskRepository = (*Repository)(nil)

func gormConfig() *gorm.Config {
	level := logger.Silent
	if logging.DebugEnabled() {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	}
}

// OpenPostgres connects to PostgreSQL with a DSN such as
// "host=localhost user=tk dbname=tasks sslmode=disable".
func OpenPostgres(dsn string, opts ...Option) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, errors.NewDatabaseError("connect to postgres", err)
	}
	return New(db, opts...)
}

// OpenSQLite opens a SQLite file through gorm.
func OpenSQLite(path string, opts ...Option) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, errors.NewDatabaseError("open sqlite", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.NewDatabaseError("open sqlite", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return New(db, opts...)
}

// New migrates the schema and wraps db.
func New(db *gorm.DB, opts ...Option) (*Repository, error) {
	logging.Debugf("migrating %s task store\n", db.Dialector.Name())
	if err := db.AutoMigrate(&taskModel{}); err != nil {
		return nil, errors.NewDatabaseError("migrate tasks", err)
	}

	r := &Repository{
		db:    db,
		clock: repository.SystemClock,
		composer: query.Composer{
			TimeArg: func(t time.Time) interface{} { return t.UTC() },
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the underlying connection pool
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(operation string, task *domain.Task, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.NewAlreadyExistsError("task", "title", task.Title).WithContext("constraint", "uq_tasks_title")
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.NewNotFoundError("task", strconv.FormatInt(task.ID, 10))
	default:
		return errors.FromStorage(operation, err)
	}
}

// Save inserts a new task or updates an existing one
func (r *Repository) Save(ctx context.Context, task *domain.Task) error {
	now := r.clock()
	if task.ID == 0 {
		m := fromDomain(task)
		m.CreatedAt = now.UTC()
		m.UpdatedAt = now.UTC()
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return translate("insert task", task, err)
		}
		task.ID = m.ID
		task.CreatedAt = now
		task.UpdatedAt = now
		return nil
	}

	var createdAt time.Time
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing taskModel
		if err := tx.Select("id", "created_at").First(&existing, task.ID).Error; err != nil {
			return err
		}
		m := fromDomain(task)
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = now.UTC()
		if err := tx.Model(&taskModel{ID: task.ID}).Select("*").Omit("id", "created_at").Updates(&m).Error; err != nil {
			return err
		}
		createdAt = existing.CreatedAt
		return nil
	})
	if err != nil {
		return translate("update task", task, err)
	}
	task.CreatedAt = createdAt
	task.UpdatedAt = now
	return nil
}

// FindByID retrieves a task by its ID
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	var m taskModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate("find task", &domain.Task{ID: id}, err)
	}
	return m.toDomain(), nil
}

// ExistsByID reports whether a task with the id exists
func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := r.count(ctx, query.Clause{SQL: "id = ?", Args: []interface{}{id}})
	return n > 0, err
}

// ExistsByTitle reports whether a task has exactly this title
func (r *Repository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	n, err := r.count(ctx, query.Clause{SQL: "title = ?", Args: []interface{}{title}})
	return n > 0, err
}

// DeleteByID deletes a task by its ID
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&taskModel{}, id)
	if result.Error != nil {
		return errors.FromStorage("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
	}
	return nil
}

// Count returns the number of tasks
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, query.Clause{})
}

func (r *Repository) scoped(ctx context.Context, where query.Clause) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&taskModel{})
	if where.SQL != "" {
		tx = tx.Where(where.SQL, where.Args...)
	}
	return tx
}

func (r *Repository) count(ctx context.Context, where query.Clause) (int64, error) {
	var n int64
	if err := r.scoped(ctx, where).Count(&n).Error; err != nil {
		return 0, errors.FromStorage("count tasks", err)
	}
	return n, nil
}

// FindPage returns one page of the tasks matching filter
func (r *Repository) FindPage(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	return r.findPage(ctx, r.composer.Filter(filter), page)
}

// Search returns one page of tasks whose title or description contains text
func (r *Repository) Search(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	return r.findPage(ctx, r.composer.Search(text), page)
}

func (r *Repository) findPage(ctx context.Context, where query.Clause, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	total, err := r.count(ctx, where)
	if err != nil {
		return nil, err
	}

	var models []taskModel
	err = r.scoped(ctx, where).
		Order(r.composer.OrderBy(page)).
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, errors.FromStorage("query tasks", err)
	}
	return domain.NewPage(toDomainList(models), total, page), nil
}

// FindByStatus lists tasks in a status, most urgent and oldest first
func (r *Repository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	return r.list(ctx, query.Clause{SQL: "status = ?", Args: []interface{}{string(status)}}, query.StatusListingOrder)
}

// FindByPriority lists tasks with the priority
func (r *Repository) FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	return r.list(ctx, query.Clause{SQL: "priority = ?", Args: []interface{}{string(priority)}}, query.NativeOrder)
}

// FindByAssignee lists tasks assigned to exactly this name
func (r *Repository) FindByAssignee(ctx context.Context, assignee string) ([]*domain.Task, error) {
	return r.list(ctx, query.Clause{SQL: "assignee = ?", Args: []interface{}{assignee}}, query.NativeOrder)
}

// FindOverdue lists pending tasks with an estimate created before cutoff
func (r *Repository) FindOverdue(ctx context.Context, cutoff time.Time) ([]*domain.Task, error) {
	return r.list(ctx, r.composer.Overdue(cutoff), query.NativeOrder)
}

func (r *Repository) list(ctx context.Context, where query.Clause, orderBy string) ([]*domain.Task, error) {
	var models []taskModel
	if err := r.scoped(ctx, where).Order(orderBy).Find(&models).Error; err != nil {
		return nil, errors.FromStorage("query tasks", err)
	}
	return toDomainList(models), nil
}

type groupCount struct {
	Grp string
	N   int64
}

// CountByStatus counts tasks per status
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	groups, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	result := make(map[domain.Status]int64, len(groups))
	for _, g := range groups {
		result[domain.Status(g.Grp)] = g.N
	}
	return result, nil
}

// CountByPriority counts tasks per priority
func (r *Repository) CountByPriority(ctx context.Context) (map[domain.Priority]int64, error) {
	groups, err := r.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	result := make(map[domain.Priority]int64, len(groups))
	for _, g := range groups {
		result[domain.Priority(g.Grp)] = g.N
	}
	return result, nil
}

func (r *Repository) countBy(ctx context.Context, column string) ([]groupCount, error) {
	var groups []groupCount
	err := r.db.WithContext(ctx).Model(&taskModel{}).
		Select(column + " AS grp, COUNT(*) AS n").
		Group(column).
		Scan(&groups).Error
	if err != nil {
		return nil, errors.FromStorage("count tasks by "+column, err)
	}
	return groups, nil
}
