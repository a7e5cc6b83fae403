package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/domain/fee"
	"github.com/garyjia/school-admin/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const voucherColumns = `id, voucher_number, student_id, month, admission_fee, monthly_fee,
	paper_fund, custom_fees, discount_type, discount_value, is_free, total, created_at`

// VoucherRepository implements port.VoucherRepository
type VoucherRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *sql.DB, logger *zap.Logger) port.VoucherRepository {
	return &VoucherRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a voucher and sets its ID
func (r *VoucherRepository) Create(ctx context.Context, v *entity.FeeVoucher) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	customFees := v.CustomFees
	if customFees == nil {
		customFees = []fee.CustomFeeLine{}
	}
	customJSON, err := json.Marshal(customFees)
	if err != nil {
		return fmt.Errorf("failed to encode custom fees: %w", err)
	}

	var discountType sql.NullString
	var discountValue sql.NullFloat64
	if v.Discount != nil {
		discountType = sql.NullString{String: string(v.Discount.Type), Valid: true}
		discountValue = sql.NullFloat64{Float64: v.Discount.Value, Valid: true}
	}

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO fee_vouchers (
			voucher_number, student_id, month, admission_fee, monthly_fee,
			paper_fund, custom_fees, discount_type, discount_value, is_free, total, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VoucherNumber, v.StudentID, v.Month,
		v.Schedule.AdmissionFee, v.Schedule.MonthlyFee, v.Schedule.PaperFund,
		string(customJSON), discountType, discountValue, v.IsFree, v.Total, v.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create voucher",
			zap.String("voucher_number", v.VoucherNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	v.ID = id
	return nil
}

// GetByID returns the voucher with id, or nil when absent
func (r *VoucherRepository) GetByID(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+voucherColumns+` FROM fee_vouchers WHERE id = ?`, id)
	return r.scanOne(row)
}

// GetByStudentAndMonth returns the voucher billed to a student for month, or nil
func (r *VoucherRepository) GetByStudentAndMonth(ctx context.Context, studentID int64, month string) (*entity.FeeVoucher, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+voucherColumns+` FROM fee_vouchers WHERE student_id = ? AND month = ?`, studentID, month)
	return r.scanOne(row)
}

// ListByStudent returns a student's vouchers, newest month first
func (r *VoucherRepository) ListByStudent(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx,
		`SELECT `+voucherColumns+` FROM fee_vouchers WHERE student_id = ? ORDER BY month DESC, id DESC`, studentID)
	if err != nil {
		r.logger.Error("Failed to list vouchers", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := []*entity.FeeVoucher{}
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

// LastNumberWithPrefix returns the highest voucher number with prefix, or ""
func (r *VoucherRepository) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var last string
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, `
		SELECT voucher_number
		FROM fee_vouchers
		WHERE voucher_number LIKE ?
		ORDER BY voucher_number DESC
		LIMIT 1`, prefix+"%").Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last voucher number: %w", err)
	}
	return last, nil
}

func (r *VoucherRepository) scanOne(row *sql.Row) (*entity.FeeVoucher, error) {
	v, err := scanVoucher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get voucher", zap.Error(err))
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}
	return v, nil
}

func scanVoucher(sc scanner) (*entity.FeeVoucher, error) {
	var v entity.FeeVoucher
	var customJSON string
	var discountType sql.NullString
	var discountValue sql.NullFloat64

	if err := sc.Scan(
		&v.ID, &v.VoucherNumber, &v.StudentID, &v.Month,
		&v.Schedule.AdmissionFee, &v.Schedule.MonthlyFee, &v.Schedule.PaperFund,
		&customJSON, &discountType, &discountValue, &v.IsFree, &v.Total, &v.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(customJSON), &v.CustomFees); err != nil {
		return nil, fmt.Errorf("failed to decode custom fees: %w", err)
	}
	if discountType.Valid {
		v.Discount = &fee.Discount{
			Type:  fee.DiscountType(discountType.String),
			Value: discountValue.Float64,
		}
	}
	return &v, nil
}

var _ port.VoucherRepository = (*VoucherRepository)(nil)
