package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// OpenDB connects to the configured database and migrates models.
func OpenDB(cfg *Config, models ...interface{}) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		if err := os.MkdirAll(cfg.Download, os.ModePerm); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dbPath := filepath.Join(cfg.Download, cfg.Dbname+".db")
		log.Printf("database path: %s", dbPath)
		dialector = sqlite.Open(dbPath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	DB = db
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
