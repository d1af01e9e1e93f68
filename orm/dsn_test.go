package orm

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	dsn, err := MySQLDSN("root:root@tcp(localhost:13306)/integration_test")
	require.NoError(t, err)
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.MultiStatements)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "integration_test", cfg.DBName)
	assert.Equal(t, "localhost:13306", cfg.Addr)

	_, err = MySQLDSN("root:root@tcp(localhost:13306")
	assert.Error(t, err)
}
