package paging

import (
	"database/sql"
	"strings"
)

type StatementKind int

const (
	// Prepare 准备临时表, 不返回结果
	Prepare StatementKind = iota
	// Count 返回一行, 只有 Total 一列
	Count
	// Page 返回当前页的数据
	Page
	// Cleanup 删除临时表, 执行失败的时候也需要执行
	Cleanup
)

// Statement 计划中的一条语句
type Statement struct {
	SQL  string
	Kind StatementKind
	// Sources 语句里面嵌入了几次原始 SQL
	Sources int
}

// Plan 一次分页查询需要执行的所有语句.
// Batch 为 true 的时候所有的语句拼接在一起一次执行, 返回多个结果集;
// 否则在同一个连接上按顺序逐条执行
type Plan struct {
	Dialect    Dialect
	Statements []Statement
	Batch      bool
	// TempTable 没有使用临时表的时候为空
	TempTable string

	// ordinal 占位符带序号, 比如 $1, :1, @p1, 多次嵌入的时候引用的是同一个参数
	ordinal bool
}

// SQL 拼接之后的完整语句
func (p *Plan) SQL() string {
	var sb strings.Builder
	for _, st := range p.Statements {
		sb.WriteString(st.SQL)
		sb.WriteByte(';')
	}
	return sb.String()
}

// BindArgs 批量执行时候的参数, 位置参数按照原始 SQL 嵌入的次数重复,
// sql.NamedArg 只绑定一次
func (p *Plan) BindArgs(args []any) []any {
	sources := 0
	for _, st := range p.Statements {
		sources += st.Sources
	}
	return p.bind(args, sources)
}

// Args 第 i 条语句单独执行的时候的参数
func (p *Plan) Args(i int, args []any) []any {
	return p.bind(args, p.Statements[i].Sources)
}

func (p *Plan) bind(args []any, sources int) []any {
	if sources == 0 || len(args) == 0 {
		return nil
	}
	if p.ordinal {
		return args
	}
	positional := make([]any, 0, len(args))
	var named []any
	for _, arg := range args {
		switch arg.(type) {
		case sql.NamedArg, *sql.NamedArg:
			named = append(named, arg)
		default:
			positional = append(positional, arg)
		}
	}
	res := make([]any, 0, len(positional)*sources+len(named))
	for i := 0; i < sources; i++ {
		res = append(res, positional...)
	}
	return append(res, named...)
}
