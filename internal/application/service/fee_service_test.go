package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/domain/fee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeeConfig = FeeConfig{
	SchoolName:    "Green Valley School",
	VoucherPrefix: "FV",
	Currency:      "PKR",
}

func float(v float64) *float64 { return &v }

type feeFixture struct {
	classRepo   *mockClassRepo
	studentRepo *mockStudentRepo
	voucherRepo *mockVoucherRepo
	storage     *mockStorage
	exporter    *mockExporter
	txManager   *mockTxManager
}

func newFeeFixture() *feeFixture {
	return &feeFixture{
		classRepo: &mockClassRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.Class, error) {
				return &entity.Class{ID: id, Name: "Nursery", MonthlyFee: 2500}, nil
			},
		},
		studentRepo: &mockStudentRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.Student, error) {
				if id != 42 {
					return nil, nil
				}
				return &entity.Student{ID: 42, ClassID: 3, SrNo: "7", Name: "Sara"}, nil
			},
		},
		voucherRepo: &mockVoucherRepo{},
		storage:     &mockStorage{},
		exporter:    &mockExporter{},
		txManager:   &mockTxManager{},
	}
}

func (f *feeFixture) service() *feeServiceImpl {
	svc := NewFeeService(f.classRepo, f.studentRepo, f.voucherRepo, f.storage, f.exporter,
		f.txManager, testFeeConfig, &mockLogger{}).(*feeServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestFeeService_Quote(t *testing.T) {
	svc := newFeeFixture().service()

	tests := []struct {
		name      string
		input     QuoteInput
		wantTotal int64
		wantErr   bool
	}{
		{
			name: "percentage discount",
			input: QuoteInput{
				Schedule:   fee.FeeSchedule{AdmissionFee: 5000, MonthlyFee: 3000, PaperFund: 500},
				CustomFees: []fee.CustomFeeLine{{Name: "Transport", Amount: 1500}},
				Discount:   &fee.Discount{Type: fee.DiscountPercentage, Value: 10},
			},
			wantTotal: 9000,
		},
		{
			name: "free student",
			input: QuoteInput{
				Schedule: fee.FeeSchedule{MonthlyFee: 3000},
				IsFree:   true,
			},
			wantTotal: 0,
		},
		{
			name:    "negative schedule amount",
			input:   QuoteInput{Schedule: fee.FeeSchedule{PaperFund: -10}},
			wantErr: true,
		},
		{
			name: "percentage above 100",
			input: QuoteInput{
				Schedule: fee.FeeSchedule{MonthlyFee: 1000},
				Discount: &fee.Discount{Type: fee.DiscountPercentage, Value: 150},
			},
			wantErr: true,
		},
		{
			name: "negative flat discount",
			input: QuoteInput{
				Discount: &fee.Discount{Type: fee.DiscountFlat, Value: -5},
			},
			wantErr: true,
		},
		{
			name: "unknown discount type",
			input: QuoteInput{
				Discount: &fee.Discount{Type: "COUPON", Value: 5},
			},
			wantErr: true,
		},
		{
			name: "unnamed custom fee",
			input: QuoteInput{
				CustomFees: []fee.CustomFeeLine{{Name: " ", Amount: 100}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := svc.Quote(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, quote.Total)
		})
	}
}

func TestFeeService_GenerateVoucher(t *testing.T) {
	t.Run("allocates next number and inherits class fee", func(t *testing.T) {
		f := newFeeFixture()
		var prefixAsked string
		f.voucherRepo.lastNumberFunc = func(ctx context.Context, prefix string) (string, error) {
			prefixAsked = prefix
			return "FV-202403-0004", nil
		}
		txCalls := 0
		f.txManager.withTransactionFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
			txCalls++
			return fn(ctx)
		}

		v, err := f.service().GenerateVoucher(context.Background(), VoucherRequest{
			StudentID: 42,
			Month:     "2024-03",
			PaperFund: 500,
			Discount:  &fee.Discount{Type: fee.DiscountFlat, Value: 1000},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, txCalls)
		assert.Equal(t, "FV-202403-", prefixAsked)
		assert.Equal(t, "FV-202403-0005", v.VoucherNumber)
		assert.Equal(t, 2500.0, v.Schedule.MonthlyFee)
		assert.Equal(t, int64(2000), v.Total)
		assert.Equal(t, "2024-03", v.Month)
	})

	t.Run("student fee overrides class fee", func(t *testing.T) {
		f := newFeeFixture()
		f.studentRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.Student, error) {
			return &entity.Student{ID: id, ClassID: 3, MonthlyFee: float(1800)}, nil
		}

		v, err := f.service().GenerateVoucher(context.Background(), VoucherRequest{StudentID: 42, Month: "2024-03"})
		require.NoError(t, err)
		assert.Equal(t, int64(1800), v.Total)
		assert.Equal(t, "FV-202403-0001", v.VoucherNumber)
	})

	t.Run("rejects duplicate month", func(t *testing.T) {
		f := newFeeFixture()
		f.voucherRepo.getByStudentAndMonthFunc = func(ctx context.Context, studentID int64, month string) (*entity.FeeVoucher, error) {
			return &entity.FeeVoucher{ID: 3, VoucherNumber: "FV-202403-0001"}, nil
		}
		created := false
		f.voucherRepo.createFunc = func(ctx context.Context, v *entity.FeeVoucher) error {
			created = true
			return nil
		}

		_, err := f.service().GenerateVoucher(context.Background(), VoucherRequest{StudentID: 42, Month: "2024-03"})
		assert.ErrorIs(t, err, ErrDuplicateVoucher)
		assert.False(t, created)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := newFeeFixture().service().GenerateVoucher(context.Background(), VoucherRequest{StudentID: 1, Month: "2024-03"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad month", func(t *testing.T) {
		_, err := newFeeFixture().service().GenerateVoucher(context.Background(), VoucherRequest{StudentID: 42, Month: "March"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		f := newFeeFixture()
		f.voucherRepo.createFunc = func(ctx context.Context, v *entity.FeeVoucher) error {
			return errors.New("disk full")
		}

		_, err := f.service().GenerateVoucher(context.Background(), VoucherRequest{StudentID: 42, Month: "2024-03"})
		assert.Error(t, err)
	})
}

func TestFeeService_GetAndListVouchers(t *testing.T) {
	f := newFeeFixture()
	f.voucherRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
		if id == 5 {
			return &entity.FeeVoucher{ID: 5}, nil
		}
		return nil, nil
	}
	f.voucherRepo.listByStudentFunc = func(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error) {
		return []*entity.FeeVoucher{{ID: 5}, {ID: 6}}, nil
	}
	svc := f.service()

	v, err := svc.GetVoucher(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.ID)

	_, err = svc.GetVoucher(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListVouchers(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListVouchers(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeeService_ExportVoucher(t *testing.T) {
	f := newFeeFixture()
	f.voucherRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
		return &entity.FeeVoucher{ID: id, VoucherNumber: "FV-202403-0002", StudentID: 42}, nil
	}

	exported, err := f.service().ExportVoucher(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "FV-202403-0002.xlsx", exported.FileName)
	assert.Equal(t, "vouchers/FV-202403-0002.xlsx", exported.Path)
	assert.Equal(t, []byte("xlsx"), f.storage.saved["vouchers/FV-202403-0002.xlsx"])

	require.NotNil(t, f.exporter.got)
	assert.Equal(t, "Green Valley School", f.exporter.got.SchoolName)
	assert.Equal(t, "Nursery", f.exporter.got.ClassName)
	assert.Equal(t, "Sara", f.exporter.got.Student.Name)
}

func TestFeeService_ExportVoucherServesArchivedCopy(t *testing.T) {
	f := newFeeFixture()
	f.voucherRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
		return &entity.FeeVoucher{ID: id, VoucherNumber: "FV-202403-0002", StudentID: 42}, nil
	}
	f.storage.saved = map[string][]byte{"vouchers/FV-202403-0002.xlsx": []byte("archived")}

	exported, err := f.service().ExportVoucher(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []byte("archived"), exported.Content)
	assert.Equal(t, "vouchers/FV-202403-0002.xlsx", exported.Path)
	assert.Nil(t, f.exporter.got, "archived voucher must not be re-rendered")
	assert.Equal(t, []byte("archived"), f.storage.saved["vouchers/FV-202403-0002.xlsx"])
}

func TestFeeService_ExportVoucherFailures(t *testing.T) {
	t.Run("exporter error", func(t *testing.T) {
		f := newFeeFixture()
		f.voucherRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
			return &entity.FeeVoucher{ID: id, StudentID: 42}, nil
		}
		f.exporter.err = errors.New("boom")

		_, err := f.service().ExportVoucher(context.Background(), 2)
		assert.Error(t, err)
		assert.Empty(t, f.storage.saved)
	})

	t.Run("missing voucher", func(t *testing.T) {
		_, err := newFeeFixture().service().ExportVoucher(context.Background(), 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
