package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/domain/studentimport"
	"github.com/google/uuid"
)

// RowReader extracts raw cell rows from an uploaded spreadsheet
type RowReader interface {
	ReadRows(filename string, data []byte) ([][]string, error)
}

// ImportConfig limits what an upload may contain
type ImportConfig struct {
	MaxRows int
}

// ImportResult summarises a completed import
type ImportResult struct {
	BatchID     string                  `json:"batch_id"`
	ClassID     int64                   `json:"class_id"`
	Created     int                     `json:"created"`
	Updated     int                     `json:"updated"`
	ArchivePath string                  `json:"archive_path"`
	Warnings    []studentimport.Warning `json:"warnings"`
}

// ImportService loads student lists from spreadsheets
type ImportService interface {
	Preview(filename string, data []byte) (*studentimport.Result, error)
	Import(ctx context.Context, classID int64, filename string, data []byte) (*ImportResult, error)
	ListStudents(ctx context.Context, classID int64) ([]*entity.Student, error)
}

type importServiceImpl struct {
	classRepo   port.ClassRepository
	studentRepo port.StudentRepository
	storage     port.FileStorage
	reader      RowReader
	txManager   port.TransactionManager
	cfg         ImportConfig
	logger      Logger
	newBatchID  func() string
}

// NewImportService creates a new ImportService
func NewImportService(
	classRepo port.ClassRepository,
	studentRepo port.StudentRepository,
	storage port.FileStorage,
	reader RowReader,
	txManager port.TransactionManager,
	cfg ImportConfig,
	logger Logger,
) ImportService {
	return &importServiceImpl{
		classRepo:   classRepo,
		studentRepo: studentRepo,
		storage:     storage,
		reader:      reader,
		txManager:   txManager,
		cfg:         cfg,
		logger:      logger,
		newBatchID:  uuid.NewString,
	}
}

// Preview maps a spreadsheet without writing anything
func (s *importServiceImpl) Preview(filename string, data []byte) (*studentimport.Result, error) {
	raw, err := s.reader.ReadRows(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if s.cfg.MaxRows > 0 && len(raw) > s.cfg.MaxRows+1 {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(raw), s.cfg.MaxRows)
	}

	result := studentimport.MapRows(raw)
	s.logger.Info("Spreadsheet mapped",
		"filename", filename,
		"raw_rows", len(raw),
		"rows", len(result.Rows),
		"warnings", len(result.Warnings),
		"header_skipped", result.HeaderSkipped)
	return &result, nil
}

// Import upserts the spreadsheet's students into a class keyed by Sr No
func (s *importServiceImpl) Import(ctx context.Context, classID int64, filename string, data []byte) (*ImportResult, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if class == nil {
		return nil, fmt.Errorf("%w: class %d", ErrNotFound, classID)
	}

	mapped, err := s.Preview(filename, data)
	if err != nil {
		return nil, err
	}
	if len(mapped.Rows) == 0 {
		return nil, ErrNoUsableRows
	}

	result := &ImportResult{
		BatchID:  s.newBatchID(),
		ClassID:  classID,
		Warnings: mapped.Warnings,
	}
	result.ArchivePath = fmt.Sprintf("%s/%s/%s", entity.FolderImports, result.BatchID, filepath.Base(filename))

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, row := range mapped.Rows {
			created, err := s.upsert(txCtx, class, row, result.BatchID)
			if err != nil {
				return fmt.Errorf("failed to import sr no %s: %w", row.SrNo, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to import students", "error", err, "class_id", classID, "batch_id", result.BatchID)
		return nil, err
	}

	if err := s.storage.Save(ctx, result.ArchivePath, data); err != nil {
		// The students are committed; a lost archive copy is only logged.
		s.logger.Error("Failed to archive import file", "error", err, "path", result.ArchivePath)
		result.ArchivePath = ""
	}

	s.logger.Info("Students imported",
		"class_id", classID,
		"batch_id", result.BatchID,
		"created", result.Created,
		"updated", result.Updated,
		"warnings", len(result.Warnings))
	return result, nil
}

// ListStudents returns the students of a class
func (s *importServiceImpl) ListStudents(ctx context.Context, classID int64) ([]*entity.Student, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if class == nil {
		return nil, fmt.Errorf("%w: class %d", ErrNotFound, classID)
	}

	students, err := s.studentRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *importServiceImpl) upsert(ctx context.Context, class *entity.Class, row studentimport.ImportRow, batchID string) (bool, error) {
	monthly := row.MonthlyFee
	if monthly == nil {
		classFee := class.MonthlyFee
		monthly = &classFee
	}

	existing, err := s.studentRepo.GetByClassAndSrNo(ctx, class.ID, row.SrNo)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, s.studentRepo.Create(ctx, &entity.Student{
			ClassID:         class.ID,
			SrNo:            row.SrNo,
			Name:            row.Name,
			FatherName:      row.FatherName,
			FatherContactNo: row.FatherContactNo,
			MonthlyFee:      monthly,
			ImportBatchID:   batchID,
		})
	}

	existing.Name = row.Name
	existing.FatherName = row.FatherName
	existing.FatherContactNo = row.FatherContactNo
	existing.MonthlyFee = monthly
	existing.ImportBatchID = batchID
	return false, s.studentRepo.Update(ctx, existing)
}
