package db

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/quotation/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLiteFile = "quotation.db"

// Dialect picks the gorm driver for DATABASE_TYPE. DATABASE_DSN, when set,
// is passed to the driver untouched instead of the assembled DSN.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	dbType := strings.ToLower(strings.TrimSpace(cfg.DBType))
	dsn := cfg.DBDSN
	if dsn == "" {
		var err error
		if dsn, err = buildDSN(dbType, cfg); err != nil {
			return nil, err
		}
	}

	switch dbType {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}

func buildDSN(dbType string, cfg config.Config) (string, error) {
	switch dbType {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName), nil
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode), nil
	case "sqlite":
		// DATABASE_NAME defaults to "postgres", which is no use as a file name.
		name := strings.TrimSpace(cfg.DBName)
		if name == "" || name == "postgres" {
			name = defaultSQLiteFile
		}
		return name, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}
