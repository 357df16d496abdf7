package database_test

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/database"
)

func TestOptions_DSN(t *testing.T) {
	dsn := database.Options{User: "app", Pass: "s3cret", Host: "db", Port: "3306", Name: "viajes"}.DSN()

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "s3cret", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "viajes", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "UTC", cfg.Loc.String())
	assert.True(t, cfg.ClientFoundRows)
}

func TestOptions_DSN_NoPassword(t *testing.T) {
	dsn := database.Options{User: "root", Host: "localhost", Port: "3306", Name: "viajes"}.DSN()
	assert.Contains(t, dsn, "root@tcp(localhost:3306)/viajes")
}
