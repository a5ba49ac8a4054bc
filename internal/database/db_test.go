package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("app", "pw", "db", "3306", "cinema")
	assert.Equal(t, "app:pw@tcp(db:3306)/cinema?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "cinema", cfg.DBName)

	assert.Equal(t, "app@tcp(db:3306)/cinema?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "", "db", "3306", "cinema"))
}
