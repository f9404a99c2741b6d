package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

const (
	defaultPoolSize = 10
	defaultIdleSize = 5
)

// DB is the persistence gateway. It is created once by the caller and
// handed to the services that need it.
type DB struct {
	Conn *gorm.DB
}

type Options struct {
	PoolSize int
	LogLevel gormlogger.LogLevel
}

func New(dialector gorm.Dialector, opts Options) (*DB, error) {
	logger := common.GetLogger()

	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = gormlogger.Warn
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}

	isSqlite := dialector.Name() == "sqlite"
	if isSqlite {
		// sqlite serializes writers, a single connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(opts.PoolSize)
		sqlDB.SetMaxIdleConns(min(defaultIdleSize, opts.PoolSize))
	}

	instance := &DB{Conn: conn}

	if isSqlite {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign key support: %w", err)
		}
	}

	if err := instance.Migrate(); err != nil {
		return nil, err
	}

	logger.Info("Database migration completed")

	return instance, nil
}

func (d *DB) Migrate() error {
	err := d.Conn.AutoMigrate(
		&models.Technician{},
		&models.Device{},
		&models.Alert{},
		&models.MaintenanceSchedule{},
		&models.User{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Transaction runs fn in one database transaction, rolling back when fn
// returns an error. fn must use the *gorm.DB it is given.
func (d *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.Conn.WithContext(ctx).Transaction(fn)
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func UseSqliteDialector(path string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000", path))
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared&_foreign_keys=1")
}

// UseMemorySqliteDialectorNamed gives every caller its own in-memory
// database, so tests do not share rows.
func UseMemorySqliteDialectorNamed(name string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
}

func UsePostgresDialector(cfg *common.Config) gorm.Dialector {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
	return postgres.Open(dsn)
}

func UseMysqlDialector(cfg *common.Config) gorm.Dialector {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	return mysql.Open(dsn)
}

var ErrUnknownDriver = errors.New("unknown database driver")

func DialectorFromConfig(cfg *common.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case common.DBDriverPostgres:
		return UsePostgresDialector(cfg), nil
	case common.DBDriverMysql:
		return UseMysqlDialector(cfg), nil
	case common.DBDriverFile:
		return UseSqliteDialector(cfg.DBPath), nil
	case common.DBDriverMemory:
		return UseMemorySqliteDialector(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DBDriver)
	}
}
