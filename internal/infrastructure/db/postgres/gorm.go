package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// DB wraps the gorm handle shared by the relational repositories.
type DB struct {
	Gorm *gorm.DB
}

// Connect opens a pooled connection, verifies it with a ping and enables
// gorm's error translation so unique violations surface as
// gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, dsn string) (*DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm db: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctxPing); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping gorm db: %w", err)
	}

	return &DB{Gorm: gormDB}, nil
}

// Migrate creates or updates the tables used by the repositories.
func (d *DB) Migrate(ctx context.Context) error {
	return d.Gorm.WithContext(ctx).AutoMigrate(&userRecord{}, &resourceRecord{}, &activityRecord{})
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Close() {
	if d == nil || d.Gorm == nil {
		return
	}
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
