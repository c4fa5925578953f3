package database

import (
	"fmt"
	"log"
	"os"

	"yideng/config"
	"yideng/models"
	courseModels "yideng/models/course"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, runs migrations and stores the handle globally.
func ConnectDb() {
	cfg := config.AppConfig

	db, err := Open(cfg.DBDriver, dsnFor(cfg))
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetConnMaxLifetime(0) // No timeout

	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	Database = DbInstance{Db: db}
}

// Open connects to one of the supported drivers.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// OpenMemory returns a private in-memory sqlite database with all tables migrated.
func OpenMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dsnFor(cfg *config.Config) string {
	switch cfg.DBDriver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
	default:
		return cfg.DBName
	}
}

// Migrate performs database migrations
func Migrate(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.Account{},
		&models.LoginTracking{},
		&models.RoleGrant{},
		&models.TokenState{},
		&models.TokenBalance{},
		&models.TokenAllowance{},
		&models.NativeAccount{},
		&models.LedgerTransaction{},
		&models.LedgerEvent{},
		&courseModels.Course{},
		&courseModels.Purchase{},
		&courseModels.Certificate{},
	)
	if err != nil {
		return err
	}

	log.Println("Migrations completed successfully.")
	return nil
}
