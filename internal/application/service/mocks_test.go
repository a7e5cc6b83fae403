package service

import (
	"context"

	"github.com/garyjia/school-admin/internal/domain/entity"
	"github.com/garyjia/school-admin/internal/voucher"
)

type mockClassRepo struct {
	createFunc    func(ctx context.Context, class *entity.Class) error
	getByIDFunc   func(ctx context.Context, id int64) (*entity.Class, error)
	getByNameFunc func(ctx context.Context, name string) (*entity.Class, error)
	listFunc      func(ctx context.Context) ([]*entity.Class, error)
}

func (m *mockClassRepo) Create(ctx context.Context, class *entity.Class) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, class)
	}
	class.ID = 1
	return nil
}

func (m *mockClassRepo) GetByID(ctx context.Context, id int64) (*entity.Class, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockClassRepo) GetByName(ctx context.Context, name string) (*entity.Class, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *mockClassRepo) List(ctx context.Context) ([]*entity.Class, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

type mockStudentRepo struct {
	createFunc            func(ctx context.Context, student *entity.Student) error
	updateFunc            func(ctx context.Context, student *entity.Student) error
	getByIDFunc           func(ctx context.Context, id int64) (*entity.Student, error)
	getByClassAndSrNoFunc func(ctx context.Context, classID int64, srNo string) (*entity.Student, error)
	listByClassFunc       func(ctx context.Context, classID int64) ([]*entity.Student, error)
}

func (m *mockStudentRepo) Create(ctx context.Context, student *entity.Student) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, student)
	}
	student.ID = 1
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *entity.Student) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, student)
	}
	return nil
}

func (m *mockStudentRepo) GetByID(ctx context.Context, id int64) (*entity.Student, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStudentRepo) GetByClassAndSrNo(ctx context.Context, classID int64, srNo string) (*entity.Student, error) {
	if m.getByClassAndSrNoFunc != nil {
		return m.getByClassAndSrNoFunc(ctx, classID, srNo)
	}
	return nil, nil
}

func (m *mockStudentRepo) ListByClass(ctx context.Context, classID int64) ([]*entity.Student, error) {
	if m.listByClassFunc != nil {
		return m.listByClassFunc(ctx, classID)
	}
	return nil, nil
}

type mockVoucherRepo struct {
	createFunc               func(ctx context.Context, v *entity.FeeVoucher) error
	getByIDFunc              func(ctx context.Context, id int64) (*entity.FeeVoucher, error)
	getByStudentAndMonthFunc func(ctx context.Context, studentID int64, month string) (*entity.FeeVoucher, error)
	listByStudentFunc        func(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error)
	lastNumberFunc           func(ctx context.Context, prefix string) (string, error)
}

func (m *mockVoucherRepo) Create(ctx context.Context, v *entity.FeeVoucher) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, v)
	}
	v.ID = 1
	return nil
}

func (m *mockVoucherRepo) GetByID(ctx context.Context, id int64) (*entity.FeeVoucher, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockVoucherRepo) GetByStudentAndMonth(ctx context.Context, studentID int64, month string) (*entity.FeeVoucher, error) {
	if m.getByStudentAndMonthFunc != nil {
		return m.getByStudentAndMonthFunc(ctx, studentID, month)
	}
	return nil, nil
}

func (m *mockVoucherRepo) ListByStudent(ctx context.Context, studentID int64) ([]*entity.FeeVoucher, error) {
	if m.listByStudentFunc != nil {
		return m.listByStudentFunc(ctx, studentID)
	}
	return nil, nil
}

func (m *mockVoucherRepo) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	if m.lastNumberFunc != nil {
		return m.lastNumberFunc(ctx, prefix)
	}
	return "", nil
}

type mockStorage struct {
	saved   map[string][]byte
	saveErr error
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.saved[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.saved[path]
	return ok
}

type mockReader struct {
	rows [][]string
	err  error
}

func (m *mockReader) ReadRows(filename string, data []byte) ([][]string, error) {
	return m.rows, m.err
}

type mockExporter struct {
	got *voucher.SheetData
	err error
}

func (m *mockExporter) Export(data *voucher.SheetData) ([]byte, error) {
	m.got = data
	if m.err != nil {
		return nil, m.err
	}
	return []byte("xlsx"), nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
