package container

import (
	"context"
	"fmt"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/application/service"
	"github.com/garyjia/school-admin/internal/config"
	"github.com/garyjia/school-admin/internal/infrastructure/persistence/repository"
	"github.com/garyjia/school-admin/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/school-admin/internal/infrastructure/spreadsheet"
	"github.com/garyjia/school-admin/internal/infrastructure/storage"
	"github.com/garyjia/school-admin/internal/voucher"
	"github.com/garyjia/school-admin/pkg/utils"
	"go.uber.org/zap"
)

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*sqlite.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := sqlite.Open(sqlite.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := sqlite.NewMigrator(db, logger).Run(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// ProvideRepositories creates all repositories over db.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &RepositoryBundle{
		Class:   repository.NewClassRepository(db.DB, logger),
		Student: repository.NewStudentRepository(db.DB, logger),
		Voucher: repository.NewVoucherRepository(db.DB, logger),
	}, nil
}

// ProvideStorage creates the file archive rooted at cfg.BaseDir.
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) (port.FileStorage, error) {
	if cfg == nil || cfg.BaseDir == "" {
		return nil, fmt.Errorf("storage base dir is required")
	}
	return storage.NewLocalFileStorage(cfg.BaseDir, logger), nil
}

// ServiceDeps are the inputs of ProvideServices.
type ServiceDeps struct {
	Config    *config.Config
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Storage   port.FileStorage
	Logger    *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.Config == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}

	svcLogger := utils.NewServiceLogger(deps.Logger)
	repos := deps.Repos

	return &ServiceBundle{
		Class: service.NewClassService(repos.Class, svcLogger),
		Fee: service.NewFeeService(
			repos.Class,
			repos.Student,
			repos.Voucher,
			deps.Storage,
			voucher.NewExcelExporter(deps.Logger),
			deps.TxManager,
			service.FeeConfig{
				SchoolName:    deps.Config.School.Name,
				VoucherPrefix: deps.Config.School.VoucherPrefix,
				Currency:      deps.Config.School.Currency,
			},
			svcLogger,
		),
		Import: service.NewImportService(
			repos.Class,
			repos.Student,
			deps.Storage,
			spreadsheet.NewReader(deps.Logger),
			deps.TxManager,
			service.ImportConfig{MaxRows: deps.Config.Import.MaxRows},
			svcLogger,
		),
	}, nil
}
