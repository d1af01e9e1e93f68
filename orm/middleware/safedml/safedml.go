package safedml

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/startdusk/dbrepo/orm"
)

var (
	ErrDeleteForbidden = errors.New("safedml: 禁止使用DELETE语句")
	ErrReadOnly        = errors.New("safedml: 只读模式下禁止修改数据")
)

func NewErrMissingWhere(typ string) error {
	return fmt.Errorf("safedml: 禁止执行没有WHERE的 %s 语句", typ)
}

// 强制要执行的SQL语句
// 1.UPDATE, DELETE必须带WHERE
// 2.可选: 禁止 DELETE, 或者只允许查询
type MiddlewareBuilder struct {
	noDelete bool
	readOnly bool
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

// NoDelete 禁用 DELETE 语句, 包括原生的 DELETE
func (m *MiddlewareBuilder) NoDelete() *MiddlewareBuilder {
	m.noDelete = true
	return m
}

// ReadOnly 只放行 SELECT, 分页和以 SELECT / WITH 开头的原生查询
func (m *MiddlewareBuilder) ReadOnly() *MiddlewareBuilder {
	m.readOnly = true
	return m
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			if qc.Type == orm.TypeSelect || qc.Type == orm.TypePage {
				return next(ctx, qc)
			}
			if m.readOnly && qc.Type != orm.TypeRaw {
				return &orm.QueryResult{Err: ErrReadOnly}
			}
			if qc.Type == orm.TypeInsert {
				return next(ctx, qc)
			}
			q, err := qc.Builder.Build()
			if err != nil {
				return &orm.QueryResult{
					Err: err,
				}
			}
			typ := qc.Type
			if typ == orm.TypeRaw {
				typ = keyword(q.SQL)
			}
			if m.readOnly && typ != orm.TypeSelect && typ != "WITH" {
				return &orm.QueryResult{Err: ErrReadOnly}
			}
			if m.noDelete && typ == orm.TypeDelete {
				return &orm.QueryResult{Err: ErrDeleteForbidden}
			}
			if (typ == orm.TypeUpdate || typ == orm.TypeDelete) &&
				!strings.Contains(strings.ToUpper(q.SQL), "WHERE") {
				return &orm.QueryResult{Err: NewErrMissingWhere(typ)}
			}
			return next(ctx, qc)
		}
	}
}

// keyword 语句的第一个单词
func keyword(query string) string {
	query = strings.TrimLeftFunc(query, unicode.IsSpace)
	end := strings.IndexFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end < 0 {
		end = len(query)
	}
	return strings.ToUpper(query[:end])
}
