package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/quotation/internal/config"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKeyErr(errors.New(`ERROR: duplicate key value violates unique constraint "assignments_pkey"`)))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: assignments.id")))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)

	d, err := Dialect(config.Config{DBType: "sqlite", DBName: ":memory:"})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN("postgres", config.Config{
		DBHost: "db", DBUser: "app", DBPassword: "secret", DBName: "quotation", DBPort: "5432", DBSSLMode: "disable",
	})
	assert.NoError(t, err)
	assert.Equal(t, "host=db user=app password=secret dbname=quotation port=5432 sslmode=disable TimeZone=UTC", dsn)

	dsn, err = buildDSN("sqlite", config.Config{DBName: "postgres"})
	assert.NoError(t, err)
	assert.Equal(t, defaultSQLiteFile, dsn)

	_, err = buildDSN("oracle", config.Config{})
	assert.Error(t, err)
}

func TestDialectPrefersExplicitDSN(t *testing.T) {
	d, err := Dialect(config.Config{DBType: "SQLite", DBDSN: "file::memory:?cache=shared"})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}
