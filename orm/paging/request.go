package paging

import (
	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Request 一次分页查询的参数
type Request struct {
	// SQL 原始的查询语句, 分页的时候会被原样包装
	SQL  string
	Args []any
	// OrderBy 排序字段, 比如 "Name" 或者 "Age DESC, ID"
	OrderBy   string
	Ascending bool
	PageSize  int
	// PageIndex 从 1 开始
	PageIndex int
	// With SQL 是一个 WITH 语句, 最后一个 CTE 的名字必须是 T
	With bool
}

func (r Request) Validate() error {
	if r.PageSize <= 0 {
		return errs.ErrInvalidPageSize
	}
	if r.PageIndex < 1 {
		return errs.ErrInvalidPageIndex
	}
	return nil
}

// Window 第 index 页的行号区间, 从 1 开始, 两端都包含
func Window(size, index int) (lo, hi int) {
	return (index-1)*size + 1, index * size
}

// Offset 跳过的行数
func Offset(size, index int) int {
	return (index - 1) * size
}
