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

const studentColumns = `id, class_id, sr_no, name, father_name, father_contact_no,
	monthly_fee, import_batch_id, created_at, updated_at`

// StudentRepository implements port.StudentRepository
type StudentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *sql.DB, logger *zap.Logger) port.StudentRepository {
	return &StudentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a student and sets its ID
func (r *StudentRepository) Create(ctx context.Context, s *entity.Student) error {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO students (
			class_id, sr_no, name, father_name, father_contact_no,
			monthly_fee, import_batch_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ClassID, s.SrNo, s.Name, s.FatherName, s.FatherContactNo,
		nullFloat(s.MonthlyFee), s.ImportBatchID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create student",
			zap.Int64("class_id", s.ClassID),
			zap.String("sr_no", s.SrNo),
			zap.Error(err))
		return fmt.Errorf("failed to create student: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return nil
}

// Update overwrites the mutable fields of an existing student
func (r *StudentRepository) Update(ctx context.Context, s *entity.Student) error {
	s.UpdatedAt = time.Now().UTC()

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		UPDATE students
		SET name = ?, father_name = ?, father_contact_no = ?,
			monthly_fee = ?, import_batch_id = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.FatherName, s.FatherContactNo,
		nullFloat(s.MonthlyFee), s.ImportBatchID, s.UpdatedAt, s.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update student", zap.Int64("id", s.ID), zap.Error(err))
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

// GetByID returns the student with id, or nil when absent
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*entity.Student, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	return r.scanOne(row)
}

// GetByClassAndSrNo returns the student holding srNo in a class, or nil
func (r *StudentRepository) GetByClassAndSrNo(ctx context.Context, classID int64, srNo string) (*entity.Student, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE class_id = ? AND sr_no = ?`, classID, srNo)
	return r.scanOne(row)
}

// ListByClass returns the students of a class in insertion order
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]*entity.Student, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE class_id = ? ORDER BY id`, classID)
	if err != nil {
		r.logger.Error("Failed to list students", zap.Int64("class_id", classID), zap.Error(err))
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []*entity.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) scanOne(row *sql.Row) (*entity.Student, error) {
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get student", zap.Error(err))
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(sc scanner) (*entity.Student, error) {
	var s entity.Student
	var fee sql.NullFloat64

	if err := sc.Scan(
		&s.ID, &s.ClassID, &s.SrNo, &s.Name, &s.FatherName, &s.FatherContactNo,
		&fee, &s.ImportBatchID, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if fee.Valid {
		v := fee.Float64
		s.MonthlyFee = &v
	}
	return &s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

var _ port.StudentRepository = (*StudentRepository)(nil)
