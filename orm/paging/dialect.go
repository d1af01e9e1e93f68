package paging

import (
	"strings"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Dialect 数据库类型, 一个仓储在创建的时候就确定了, 之后不会再变
type Dialect int

const (
	SQLServer Dialect = iota
	MySQL
	SQLite
	Oracle
	Postgres
)

var dialectNames = map[Dialect]string{
	SQLServer: "sqlserver",
	MySQL:     "mysql",
	SQLite:    "sqlite",
	Oracle:    "oracle",
	Postgres:  "postgres",
}

var dialectAlias = map[string]Dialect{
	"sqlserver":  SQLServer,
	"mssql":      SQLServer,
	"mysql":      MySQL,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"oracle":     Oracle,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pgsql":      Postgres,
	"npgsql":     Postgres,
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return "unknown"
}

func (d Dialect) Valid() bool {
	_, ok := dialectNames[d]
	return ok
}

// ParseDialect 忽略大小写, 不认识的名字是配置错误
func ParseDialect(name string) (Dialect, error) {
	d, ok := dialectAlias[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errs.NewErrUnsupportedDialect(name)
	}
	return d, nil
}
