// Package infra wires the application's infrastructure: database connection
// and outbound provider implementations.
package infra

import (
	"errors"
	"time"

	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/infra/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the postgres connection and migrates the schema.
func NewDBConnection(cnf config.DBConfig, appEnv string) (*gorm.DB, error) {
	if cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	connection, err := gorm.Open(postgres.Open(cnf.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	if err := connection.AutoMigrate(
		&repository.User{},
		&repository.BusinessInfo{},
		&repository.Client{},
		&repository.Transaction{},
		&repository.UserSettings{},
		&repository.ClientSettings{},
		&repository.MonthlyUsage{},
	); err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return connection, nil
}
