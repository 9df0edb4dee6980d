package db

import (
	"database/sql"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/formpulse/formpulse/log"
	"github.com/formpulse/formpulse/models"
)

var (
	DB    *gorm.DB
	SqlDB *sql.DB
)

// InitDB opens the postgres connection pool and migrates the schema.
func InitDB(dsn string) error {
	gormLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      false,
		},
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return err
	}

	SqlDB, err = DB.DB()
	if err != nil {
		return err
	}

	SqlDB.SetMaxIdleConns(10)
	SqlDB.SetMaxOpenConns(100)
	SqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrateSchema(); err != nil {
		return err
	}

	log.Info("database connected and migrated")
	return nil
}

func migrateSchema() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Survey{},
		&models.Question{},
		&models.Option{},
		&models.Response{},
		&models.Answer{},
		&models.SurveyLink{},
		&models.Webhook{},
	)
}

func GetDB() *gorm.DB {
	return DB
}
