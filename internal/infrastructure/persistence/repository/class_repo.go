package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ClassRepository implements port.ClassRepository
type ClassRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClassRepository creates a new class repository
func NewClassRepository(db *sql.DB, logger *zap.Logger) port.ClassRepository {
	return &ClassRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a class and sets its ID
func (r *ClassRepository) Create(ctx context.Context, class *entity.Class) error {
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO classes (name, monthly_fee, created_at) VALUES (?, ?, ?)`,
		class.Name, class.MonthlyFee, class.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create class", zap.String("name", class.Name), zap.Error(err))
		return fmt.Errorf("failed to create class: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	class.ID = id
	return nil
}

// GetByID returns the class with id, or nil when absent
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*entity.Class, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, monthly_fee, created_at FROM classes WHERE id = ?`, id)
	return r.scan(row)
}

// GetByName returns the class with the exact name, or nil when absent
func (r *ClassRepository) GetByName(ctx context.Context, name string) (*entity.Class, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, monthly_fee, created_at FROM classes WHERE name = ?`, name)
	return r.scan(row)
}

// List returns all classes in insertion order
func (r *ClassRepository) List(ctx context.Context) ([]*entity.Class, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, monthly_fee, created_at FROM classes ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to list classes", zap.Error(err))
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	classes := []*entity.Class{}
	for rows.Next() {
		var c entity.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.MonthlyFee, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, &c)
	}
	return classes, rows.Err()
}

func (r *ClassRepository) scan(row *sql.Row) (*entity.Class, error) {
	var c entity.Class
	err := row.Scan(&c.ID, &c.Name, &c.MonthlyFee, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get class", zap.Error(err))
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &c, nil
}

var _ port.ClassRepository = (*ClassRepository)(nil)
