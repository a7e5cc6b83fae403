package port

import (
	"context"

	"github.com/garyjia/school-admin/internal/domain/entity"
)

// ClassRepository defines persistence operations for Class
type ClassRepository interface {
	Create(ctx context.Context, class *entity.Class) error
	GetByID(ctx context.Context, id int64) (*entity.Class, error)
	GetByName(ctx context.Context, name string) (*entity.Class, error)
	List(ctx context.Context) ([]*entity.Class, error)
}

// StudentRepository defines persistence operations for Student
type StudentRepository interface {
	Create(ctx context.Context, student *entity.Student) error
	Update(ctx context.Context, student *entity.Student) error
	GetByID(ctx context.Context, id int64) (*entity.Student, error)
	GetByClassAndSrNo(ctx context.Context, classID int64, srNo string) (*entity.Student, error)
	ListByClass(ctx context.Context, classID int64) ([]*entity.Student, error)
}

// VoucherRepository defines persistence operations for FeeVoucher
type VoucherRepository interface {
	Create(ctx context.Context, voucher *entity.FeeVoucher) error
	GetByID(ctx context.Context, id int64) (*entity.FeeVoucher, error)
	GetByStudentAndMonth(ctx context.Context, studentID int64, month string) (*entity.FeeVoucher, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error)
	// LastNumberWithPrefix returns the highest voucher number starting with
	// prefix, or "" when there is none
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
