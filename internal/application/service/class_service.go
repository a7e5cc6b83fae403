package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/domain/classorder"
	"github.com/garyjia/school-admin/internal/domain/entity"
)

// ClassService manages school classes
type ClassService interface {
	CreateClass(ctx context.Context, name string, monthlyFee float64) (*entity.Class, error)
	ListClasses(ctx context.Context) ([]*entity.Class, error)
	GetClass(ctx context.Context, id int64) (*entity.Class, error)
}

type classServiceImpl struct {
	classRepo port.ClassRepository
	logger    Logger
}

// NewClassService creates a new ClassService
func NewClassService(classRepo port.ClassRepository, logger Logger) ClassService {
	return &classServiceImpl{
		classRepo: classRepo,
		logger:    logger,
	}
}

// CreateClass adds a class with a unique name
func (s *classServiceImpl) CreateClass(ctx context.Context, name string, monthlyFee float64) (*entity.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	if monthlyFee < 0 {
		return nil, fmt.Errorf("%w: monthly fee must not be negative", ErrInvalidInput)
	}

	existing, err := s.classRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check class: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}

	class := &entity.Class{
		Name:       name,
		MonthlyFee: monthlyFee,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		s.logger.Error("Failed to create class", "error", err, "name", name)
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	class.Rank = classorder.RankOf(class.Name)

	s.logger.Info("Class created", "class_id", class.ID, "name", name, "rank", class.Rank)
	return class, nil
}

// ListClasses returns all classes in academic sequence
func (s *classServiceImpl) ListClasses(ctx context.Context) ([]*entity.Class, error) {
	classes, err := s.classRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}

	sorted := classorder.SortBySequence(classes, entity.ClassName)
	for _, c := range sorted {
		c.Rank = classorder.RankOf(c.Name)
	}
	return sorted, nil
}

// GetClass returns a class by ID
func (s *classServiceImpl) GetClass(ctx context.Context, id int64) (*entity.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if class == nil {
		return nil, fmt.Errorf("%w: class %d", ErrNotFound, id)
	}
	class.Rank = classorder.RankOf(class.Name)
	return class, nil
}
