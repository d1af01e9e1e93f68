package paging

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Planner 把原始 SQL 改写成 "总数 + 当前页" 两个结果集.
// 实现都是纯函数, 不会访问数据库
type Planner interface {
	Plan(req Request) (*Plan, error)
}

// NewPlanner 每一种数据库一个实现
func NewPlanner(d Dialect) (Planner, error) {
	switch d {
	case SQLServer:
		return sqlServerPlanner{}, nil
	case MySQL:
		return mysqlPlanner{}, nil
	case SQLite:
		return sqlitePlanner{}, nil
	case Oracle:
		return oraclePlanner{}, nil
	case Postgres:
		return postgresPlanner{}, nil
	}
	return nil, errs.NewErrUnsupportedDialect(d)
}

// tempTableName 每次调用都不一样, 去掉了 uuid 里面的 -
func tempTableName() string {
	return "TEMPORARY_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// prepare 校验请求, 返回整理之后的原始 SQL 和排序子句
func prepare(req Request) (string, string, error) {
	if err := req.Validate(); err != nil {
		return "", "", err
	}
	order, err := OrderClause(req.OrderBy, req.Ascending)
	if err != nil {
		return "", "", err
	}
	src := strings.TrimRight(strings.TrimSpace(req.SQL), "; \t\r\n")
	return src, order, nil
}

func withSpace(order string) string {
	if order == "" {
		return ""
	}
	return " " + order
}

// sqlServerPlanner 暂存到 #临时表, 用 ROW_NUMBER 取窗口
type sqlServerPlanner struct{}

func (sqlServerPlanner) Plan(req Request) (*Plan, error) {
	src, order, err := prepare(req)
	if err != nil {
		return nil, err
	}
	if order == "" {
		// ROW_NUMBER 必须要有 ORDER BY
		order = "ORDER BY (SELECT 0)"
	}
	tmp := "#" + tempTableName()
	drop := fmt.Sprintf("IF OBJECT_ID(N'TEMPDB..%s') IS NOT NULL DROP TABLE %s", tmp, tmp)
	stage := fmt.Sprintf("SELECT * INTO %s FROM (%s) AS T", tmp, src)
	if req.With {
		stage = fmt.Sprintf("%s SELECT * INTO %s FROM T", src, tmp)
	}
	lo, hi := Window(req.PageSize, req.PageIndex)
	return &Plan{
		Dialect:   SQLServer,
		TempTable: tmp,
		Batch:     true,
		ordinal:   true,
		Statements: []Statement{
			{SQL: drop, Kind: Prepare},
			{SQL: stage, Kind: Prepare, Sources: 1},
			{SQL: "SELECT COUNT(1) AS Total FROM " + tmp, Kind: Count},
			{SQL: fmt.Sprintf("SELECT * FROM (SELECT ROW_NUMBER() OVER (%s) AS RowNumber, * FROM %s) AS N WHERE RowNumber BETWEEN %d AND %d",
				order, tmp, lo, hi), Kind: Page},
			{SQL: drop, Kind: Cleanup},
		},
	}, nil
}

// mysqlPlanner 暂存到临时表, 用 LIMIT OFFSET 取窗口.
// 驱动没有开启 interpolateParams 的时候, 带参数的语句会走预处理, 而预处理不支持多条语句,
// 所以有参数的时候逐条执行. 临时表是会话级别的, 逐条执行在同一个连接上结果一致
type mysqlPlanner struct{}

func (mysqlPlanner) Plan(req Request) (*Plan, error) {
	src, order, err := prepare(req)
	if err != nil {
		return nil, err
	}
	batch := len(req.Args) == 0
	if req.With {
		return &Plan{
			Dialect:    MySQL,
			Batch:      batch,
			Statements: withStatements(src, order, req),
		}, nil
	}
	tmp := tempTableName()
	drop := "DROP TEMPORARY TABLE IF EXISTS " + tmp
	return &Plan{
		Dialect:   MySQL,
		TempTable: tmp,
		Batch:     batch,
		Statements: []Statement{
			{SQL: drop, Kind: Prepare},
			{SQL: fmt.Sprintf("CREATE TEMPORARY TABLE %s SELECT * FROM (%s) AS T", tmp, src), Kind: Prepare, Sources: 1},
			{SQL: "SELECT COUNT(1) AS Total FROM " + tmp, Kind: Count},
			{SQL: fmt.Sprintf("SELECT * FROM %s AS X%s LIMIT %d OFFSET %d",
				tmp, withSpace(order), req.PageSize, Offset(req.PageSize, req.PageIndex)), Kind: Page},
			{SQL: drop, Kind: Cleanup},
		},
	}, nil
}

// postgresPlanner 和 MySQL 一样暂存到临时表.
// 带参数的多条语句不能在一次请求里执行, 所以有参数的时候逐条执行
type postgresPlanner struct{}

func (postgresPlanner) Plan(req Request) (*Plan, error) {
	src, order, err := prepare(req)
	if err != nil {
		return nil, err
	}
	batch := len(req.Args) == 0
	if req.With {
		return &Plan{
			Dialect:    Postgres,
			Batch:      batch,
			ordinal:    true,
			Statements: withStatements(src, order, req),
		}, nil
	}
	tmp := tempTableName()
	drop := "DROP TABLE IF EXISTS " + tmp
	return &Plan{
		Dialect:   Postgres,
		TempTable: tmp,
		Batch:     batch,
		ordinal:   true,
		Statements: []Statement{
			{SQL: drop, Kind: Prepare},
			{SQL: fmt.Sprintf("CREATE TEMPORARY TABLE %s AS SELECT * FROM (%s) AS T", tmp, src), Kind: Prepare, Sources: 1},
			{SQL: "SELECT COUNT(1) AS Total FROM " + tmp, Kind: Count},
			{SQL: fmt.Sprintf("SELECT * FROM %s AS X%s LIMIT %d OFFSET %d",
				tmp, withSpace(order), req.PageSize, Offset(req.PageSize, req.PageIndex)), Kind: Page},
			{SQL: drop, Kind: Cleanup},
		},
	}, nil
}

// sqlitePlanner 不使用临时表, 原始 SQL 嵌入两次
type sqlitePlanner struct{}

func (sqlitePlanner) Plan(req Request) (*Plan, error) {
	src, order, err := prepare(req)
	if err != nil {
		return nil, err
	}
	p := &Plan{Dialect: SQLite}
	if req.With {
		p.Statements = withStatements(src, order, req)
		return p, nil
	}
	p.Statements = []Statement{
		{SQL: fmt.Sprintf("SELECT COUNT(1) AS Total FROM (%s) AS T", src), Kind: Count, Sources: 1},
		{SQL: fmt.Sprintf("SELECT * FROM (%s) AS X%s LIMIT %d OFFSET %d",
			src, withSpace(order), req.PageSize, Offset(req.PageSize, req.PageIndex)), Kind: Page, Sources: 1},
	}
	return p, nil
}

// oraclePlanner 用 ROWNUM 夹出窗口, 总数和当前页分两次执行.
// 排序必须在 ROWNUM 之前完成
type oraclePlanner struct{}

func (oraclePlanner) Plan(req Request) (*Plan, error) {
	src, order, err := prepare(req)
	if err != nil {
		return nil, err
	}
	lo, hi := Window(req.PageSize, req.PageIndex)
	p := &Plan{Dialect: Oracle, ordinal: true}
	if req.With {
		p.Statements = []Statement{
			{SQL: src + " SELECT COUNT(1) AS Total FROM T", Kind: Count, Sources: 1},
			{SQL: fmt.Sprintf("%s, O AS (SELECT * FROM T%s), R AS (SELECT O.*, ROWNUM AS RowNumber FROM O WHERE ROWNUM <= %d) SELECT * FROM R WHERE R.RowNumber >= %d",
				src, withSpace(order), hi, lo), Kind: Page, Sources: 1},
		}
		return p, nil
	}
	p.Statements = []Statement{
		{SQL: fmt.Sprintf("SELECT COUNT(1) AS Total FROM (%s) T", src), Kind: Count, Sources: 1},
		{SQL: fmt.Sprintf("SELECT * FROM (SELECT X.*, ROWNUM AS RowNumber FROM (%s%s) X WHERE ROWNUM <= %d) T WHERE T.RowNumber >= %d",
			src, withSpace(order), hi, lo), Kind: Page, Sources: 1},
	}
	return p, nil
}

// withStatements MySQL, Postgres, SQLite 的 WITH 语句不暂存, 直接把 CTE 拼在每一条语句前面
func withStatements(src, order string, req Request) []Statement {
	return []Statement{
		{SQL: src + " SELECT COUNT(1) AS Total FROM T", Kind: Count, Sources: 1},
		{SQL: fmt.Sprintf("%s SELECT * FROM T%s LIMIT %d OFFSET %d",
			src, withSpace(order), req.PageSize, Offset(req.PageSize, req.PageIndex)), Kind: Page, Sources: 1},
	}
}
