package orm

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/paging"
)

var (
	DialectSQLServer Dialect = &sqlServerDialect{}
	DialectMySQL     Dialect = &mysqlDialect{}
	DialectSQLite    Dialect = &sqliteDialect{}
	DialectOracle    Dialect = &oracleDialect{}
	DialectPostgres  Dialect = &postgresDialect{}
)

// Dialect 屏蔽不同数据库在 SQL 上的差异
type Dialect interface {
	Name() paging.Dialect

	// quote 给标识符加上引号
	// MySQL 反引号 `
	// SQLServer 方括号 []
	// Oracle, PostgreSQL 是双引号
	quote(sb *strings.Builder, name string)

	// placeholder 第 n 个参数的占位符, n 从 1 开始
	placeholder(sb *strings.Builder, n int)

	// procedure 调用存储过程的语句, query 表示需要返回结果集
	procedure(name string, args []any, query bool) (string, error)
}

// DialectOf 根据数据库类型找到对应的方言
func DialectOf(d paging.Dialect) (Dialect, error) {
	switch d {
	case paging.SQLServer:
		return DialectSQLServer, nil
	case paging.MySQL:
		return DialectMySQL, nil
	case paging.SQLite:
		return DialectSQLite, nil
	case paging.Oracle:
		return DialectOracle, nil
	case paging.Postgres:
		return DialectPostgres, nil
	}
	return nil, errs.NewErrUnsupportedDialect(d)
}

type standardSQL struct{}

func (standardSQL) quote(sb *strings.Builder, name string) {
	sb.WriteByte('"')
	sb.WriteString(name)
	sb.WriteByte('"')
}

func (standardSQL) placeholder(sb *strings.Builder, n int) {
	sb.WriteByte('?')
}

func (d standardSQL) procedure(name string, args []any, query bool) (string, error) {
	return callProcedure("CALL ", name, args, "(", ")", func(sb *strings.Builder, n int) {
		sb.WriteByte('?')
	})
}

// callProcedure 拼接 prefix name open ?, ?, ? close
func callProcedure(prefix, name string, args []any, open, end string,
	placeholder func(sb *strings.Builder, n int)) (string, error) {
	if !isIdentifier(name) {
		return "", errs.NewErrInvalidIdentifier(name)
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(name)
	sb.WriteString(open)
	for i := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		placeholder(&sb, i+1)
	}
	sb.WriteString(end)
	return sb.String(), nil
}

type sqlServerDialect struct {
	standardSQL
}

func (sqlServerDialect) Name() paging.Dialect {
	return paging.SQLServer
}

func (sqlServerDialect) quote(sb *strings.Builder, name string) {
	sb.WriteByte('[')
	sb.WriteString(name)
	sb.WriteByte(']')
}

func (sqlServerDialect) placeholder(sb *strings.Builder, n int) {
	sb.WriteString("@p")
	sb.WriteString(strconv.Itoa(n))
}

func (d sqlServerDialect) procedure(name string, args []any, query bool) (string, error) {
	if !isIdentifier(name) {
		return "", errs.NewErrInvalidIdentifier(name)
	}
	var sb strings.Builder
	sb.WriteString("EXEC ")
	sb.WriteString(name)
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte(' ')
		// 命名参数按照名字传给存储过程
		if na, ok := arg.(sql.NamedArg); ok {
			sb.WriteString("@" + na.Name + " = @" + na.Name)
			continue
		}
		d.placeholder(&sb, i+1)
	}
	return sb.String(), nil
}

type mysqlDialect struct {
	standardSQL
}

func (mysqlDialect) Name() paging.Dialect {
	return paging.MySQL
}

func (mysqlDialect) quote(sb *strings.Builder, name string) {
	sb.WriteByte('`')
	sb.WriteString(name)
	sb.WriteByte('`')
}

type sqliteDialect struct {
	standardSQL
}

func (sqliteDialect) Name() paging.Dialect {
	return paging.SQLite
}

func (sqliteDialect) quote(sb *strings.Builder, name string) {
	sb.WriteByte('`')
	sb.WriteString(name)
	sb.WriteByte('`')
}

func (sqliteDialect) procedure(string, []any, bool) (string, error) {
	return "", errs.ErrUnsupportedProcedure
}

type oracleDialect struct {
	standardSQL
}

func (oracleDialect) Name() paging.Dialect {
	return paging.Oracle
}

func (oracleDialect) placeholder(sb *strings.Builder, n int) {
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(n))
}

// procedure 返回结果集需要游标输出参数, 这里不支持
func (d oracleDialect) procedure(name string, args []any, query bool) (string, error) {
	if query {
		return "", errs.ErrUnsupportedProcedure
	}
	return callProcedure("BEGIN ", name, args, "(", "); END;", d.placeholder)
}

type postgresDialect struct {
	standardSQL
}

func (postgresDialect) Name() paging.Dialect {
	return paging.Postgres
}

func (postgresDialect) quote(sb *strings.Builder, name string) {
	sb.WriteString(pq.QuoteIdentifier(name))
}

func (postgresDialect) placeholder(sb *strings.Builder, n int) {
	sb.WriteByte('$')
	sb.WriteString(strconv.Itoa(n))
}

// procedure PostgreSQL 的存储过程没有结果集, 需要结果集的时候调用同名的函数
func (d postgresDialect) procedure(name string, args []any, query bool) (string, error) {
	if query {
		return callProcedure("SELECT * FROM ", name, args, "(", ")", d.placeholder)
	}
	return callProcedure("CALL ", name, args, "(", ")", d.placeholder)
}
