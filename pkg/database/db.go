package database

import (
	"fmt"

	"github.com/sigalit/guide-scheduler-api/pkg/config"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the store and migrates the schema. Postgres is used when
// DATABASE_URL is set, otherwise a local sqlite file; the schema, including
// the unique indexes the engine's invariants rely on, is identical on both.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// Surface unique-index violations as gorm.ErrDuplicatedKey so racing
		// assignment writers get a clean conflict.
		TranslateError: true,
	}

	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), gormCfg)
		logrus.Info("connecting to postgres")
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DataPath), gormCfg)
		logrus.WithField("path", cfg.DataPath).Info("using sqlite store")
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the engine reads and writes.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.House{},
		&models.User{},
		&models.Schedule{},
		&models.Assignment{},
		&models.Constraint{},
		&models.WeeklyConstraint{},
		&models.DynamicConstraint{},
		&models.CoordinatorRule{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
