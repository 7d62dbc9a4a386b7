package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/otcheredev/dicomweb-store/internal/config"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

// DB is the global database instance
var DB *gorm.DB

// Connect establishes the database connection and runs migrations. The
// engine is picked once from main_database.dbtype; there is no runtime
// switching and no heterogeneous composition.
func Connect(cfg config.DatabaseConfig) error {
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return err
	}

	var dialector gorm.Dialector
	switch cfg.DBType {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported dbtype %q", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	DB = db

	if err := AutoMigrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return DB.AutoMigrate(
		&models.Patient{},
		&models.Study{},
		&models.Series{},
		&models.Image{},
		&models.StateMeta{},
		&models.JSONMeta{},
		&models.AccessLogEvent{},
	)
}

// Close closes the database connection
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
