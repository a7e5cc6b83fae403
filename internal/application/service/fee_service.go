package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/domain/fee"
	"github.com/garyjia/school-admin/internal/voucher"
)

// QuoteInput is the fee data entered for a quote or voucher
type QuoteInput struct {
	Schedule   fee.FeeSchedule     `json:"schedule"`
	CustomFees []fee.CustomFeeLine `json:"custom_fees"`
	Discount   *fee.Discount       `json:"discount"`
	IsFree     bool                `json:"is_free"`
}

// VoucherRequest asks for a fee voucher for one student and month.
// A nil MonthlyFee falls back to the student's fee, then the class fee.
type VoucherRequest struct {
	StudentID    int64               `json:"student_id"`
	Month        string              `json:"month"`
	AdmissionFee float64             `json:"admission_fee"`
	MonthlyFee   *float64            `json:"monthly_fee"`
	PaperFund    float64             `json:"paper_fund"`
	CustomFees   []fee.CustomFeeLine `json:"custom_fees"`
	Discount     *fee.Discount       `json:"discount"`
	IsFree       bool                `json:"is_free"`
}

// VoucherExporter renders a voucher as a printable document
type VoucherExporter interface {
	Export(data *voucher.SheetData) ([]byte, error)
}

// FeeConfig holds school-level settings printed on vouchers
type FeeConfig struct {
	SchoolName    string
	VoucherPrefix string
	Currency      string
}

// ExportedVoucher is an exported voucher document
type ExportedVoucher struct {
	FileName string
	Path     string
	Content  []byte
}

// FeeService quotes fees and issues fee vouchers
type FeeService interface {
	Quote(input QuoteInput) (fee.Quote, error)
	GenerateVoucher(ctx context.Context, req VoucherRequest) (*entity.FeeVoucher, error)
	GetVoucher(ctx context.Context, id int64) (*entity.FeeVoucher, error)
	ListVouchers(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error)
	ExportVoucher(ctx context.Context, id int64) (*ExportedVoucher, error)
}

type feeServiceImpl struct {
	classRepo   port.ClassRepository
	studentRepo port.StudentRepository
	voucherRepo port.VoucherRepository
	storage     port.FileStorage
	exporter    VoucherExporter
	txManager   port.TransactionManager
	cfg         FeeConfig
	logger      Logger
	now         func() time.Time
}

// NewFeeService creates a new FeeService
func NewFeeService(
	classRepo port.ClassRepository,
	studentRepo port.StudentRepository,
	voucherRepo port.VoucherRepository,
	storage port.FileStorage,
	exporter VoucherExporter,
	txManager port.TransactionManager,
	cfg FeeConfig,
	logger Logger,
) FeeService {
	return &feeServiceImpl{
		classRepo:   classRepo,
		studentRepo: studentRepo,
		voucherRepo: voucherRepo,
		storage:     storage,
		exporter:    exporter,
		txManager:   txManager,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// ValidateQuote checks the ranges the calculator leaves unchecked
func ValidateQuote(input QuoteInput) error {
	return validateFees(input.Schedule, input.CustomFees, input.Discount)
}

// Quote validates the input and returns the fee breakdown
func (s *feeServiceImpl) Quote(input QuoteInput) (fee.Quote, error) {
	if err := ValidateQuote(input); err != nil {
		return fee.Quote{}, err
	}
	return fee.Breakdown(input.Schedule, input.CustomFees, input.Discount, input.IsFree), nil
}

// GenerateVoucher computes and stores a voucher for the request
func (s *feeServiceImpl) GenerateVoucher(ctx context.Context, req VoucherRequest) (*entity.FeeVoucher, error) {
	month, err := time.Parse(entity.MonthLayout, strings.TrimSpace(req.Month))
	if err != nil {
		return nil, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidInput)
	}

	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: student %d", ErrNotFound, req.StudentID)
	}

	monthly, err := s.resolveMonthlyFee(ctx, req.MonthlyFee, student)
	if err != nil {
		return nil, err
	}

	schedule := fee.FeeSchedule{
		AdmissionFee: req.AdmissionFee,
		MonthlyFee:   monthly,
		PaperFund:    req.PaperFund,
	}
	if err := validateFees(schedule, req.CustomFees, req.Discount); err != nil {
		return nil, err
	}

	v := &entity.FeeVoucher{
		StudentID:  student.ID,
		Month:      month.Format(entity.MonthLayout),
		Schedule:   schedule,
		CustomFees: req.CustomFees,
		Discount:   req.Discount,
		IsFree:     req.IsFree,
		Total:      fee.ComputeTotal(schedule, req.CustomFees, req.Discount, req.IsFree),
		CreatedAt:  s.now().UTC(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.voucherRepo.GetByStudentAndMonth(txCtx, v.StudentID, v.Month)
		if err != nil {
			return fmt.Errorf("failed to check existing voucher: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateVoucher, existing.VoucherNumber)
		}

		prefix := voucher.NumberPrefix(s.cfg.VoucherPrefix, month)
		last, err := s.voucherRepo.LastNumberWithPrefix(txCtx, prefix)
		if err != nil {
			return fmt.Errorf("failed to get last voucher number: %w", err)
		}
		number, err := voucher.NextNumber(prefix, last)
		if err != nil {
			return fmt.Errorf("failed to allocate voucher number: %w", err)
		}
		v.VoucherNumber = number

		return s.voucherRepo.Create(txCtx, v)
	})
	if err != nil {
		s.logger.Error("Failed to generate voucher", "error", err, "student_id", req.StudentID, "month", v.Month)
		return nil, err
	}

	s.logger.Info("Voucher generated",
		"voucher_id", v.ID,
		"voucher_number", v.VoucherNumber,
		"student_id", v.StudentID,
		"total", v.Total)
	return v, nil
}

// GetVoucher returns a voucher by ID
func (s *feeServiceImpl) GetVoucher(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
	v, err := s.voucherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: voucher %d", ErrNotFound, id)
	}
	return v, nil
}

// ListVouchers returns the vouchers of a student
func (s *feeServiceImpl) ListVouchers(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: student %d", ErrNotFound, studentID)
	}

	vouchers, err := s.voucherRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	return vouchers, nil
}

// ExportVoucher renders a voucher workbook and archives it in storage.
// Vouchers are immutable, so a previously archived workbook is served as is.
func (s *feeServiceImpl) ExportVoucher(ctx context.Context, id int64) (*ExportedVoucher, error) {
	v, err := s.GetVoucher(ctx, id)
	if err != nil {
		return nil, err
	}

	fileName := v.VoucherNumber + ".xlsx"
	path := entity.FolderVouchers + "/" + fileName
	if s.storage.Exists(ctx, path) {
		content, err := s.storage.Read(ctx, path)
		if err != nil {
			s.logger.Error("Failed to read archived voucher", "error", err, "path", path)
			return nil, fmt.Errorf("failed to read archived voucher: %w", err)
		}
		s.logger.Info("Voucher served from archive", "voucher_id", id, "path", path)
		return &ExportedVoucher{FileName: fileName, Path: path, Content: content}, nil
	}

	student, err := s.studentRepo.GetByID(ctx, v.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	className := ""
	if student != nil {
		class, err := s.classRepo.GetByID(ctx, student.ClassID)
		if err != nil {
			return nil, fmt.Errorf("failed to get class: %w", err)
		}
		if class != nil {
			className = class.Name
		}
	}

	content, err := s.exporter.Export(&voucher.SheetData{
		SchoolName: s.cfg.SchoolName,
		Currency:   s.cfg.Currency,
		Voucher:    v,
		Student:    student,
		ClassName:  className,
	})
	if err != nil {
		s.logger.Error("Failed to export voucher", "error", err, "voucher_id", id)
		return nil, fmt.Errorf("failed to export voucher: %w", err)
	}

	if err := s.storage.Save(ctx, path, content); err != nil {
		s.logger.Error("Failed to archive voucher", "error", err, "path", path)
		return nil, fmt.Errorf("failed to archive voucher: %w", err)
	}

	s.logger.Info("Voucher exported", "voucher_id", id, "path", path, "size", len(content))
	return &ExportedVoucher{
		FileName: fileName,
		Path:     path,
		Content:  content,
	}, nil
}

func (s *feeServiceImpl) resolveMonthlyFee(ctx context.Context, requested *float64, student *entity.Student) (float64, error) {
	if requested != nil {
		return *requested, nil
	}
	if student.MonthlyFee != nil {
		return *student.MonthlyFee, nil
	}

	class, err := s.classRepo.GetByID(ctx, student.ClassID)
	if err != nil {
		return 0, fmt.Errorf("failed to get class: %w", err)
	}
	if class == nil {
		return 0, nil
	}
	return class.MonthlyFee, nil
}

// validateFees enforces the ranges the calculator leaves unchecked
func validateFees(schedule fee.FeeSchedule, customFees []fee.CustomFeeLine, discount *fee.Discount) error {
	heads := []struct {
		name  string
		value float64
	}{
		{"admission fee", schedule.AdmissionFee},
		{"monthly fee", schedule.MonthlyFee},
		{"paper fund", schedule.PaperFund},
	}
	for _, h := range heads {
		if !validAmount(h.value) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, h.name)
		}
	}

	for i, line := range customFees {
		if strings.TrimSpace(line.Name) == "" {
			return fmt.Errorf("%w: custom fee %d needs a name", ErrInvalidInput, i+1)
		}
		if !validAmount(line.Amount) {
			return fmt.Errorf("%w: custom fee %q must be a non-negative number", ErrInvalidInput, line.Name)
		}
	}

	if discount == nil {
		return nil
	}
	switch discount.Type {
	case fee.DiscountPercentage:
		if !validAmount(discount.Value) || discount.Value > 100 {
			return fmt.Errorf("%w: percentage discount must be between 0 and 100", ErrInvalidInput)
		}
	case fee.DiscountFlat:
		if !validAmount(discount.Value) {
			return fmt.Errorf("%w: flat discount must be a non-negative number", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrInvalidInput, discount.Type)
	}
	return nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
