package orm

import (
	"github.com/go-sql-driver/mysql"
)

// MySQLDSN 分页的批量语句需要 multiStatements, 时间类型需要 parseTime
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
