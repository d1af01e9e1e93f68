package orm

import (
	"context"
)

// Querier 用于 `SELECT` 语句
type Querier[T any] interface {
	Get(ctx context.Context) (*T, error)
	GetMulti(ctx context.Context) ([]*T, error)

	// 返回值的形式也可以, 但一般返回指针
	// 返回指针 是允许在 AOP 的场景下修改返回值, 从而不引起数据拷贝
}

// Executor 用于 `INSERT`, `UPDATE`, `DELETE` 语句
type Executor interface {
	Exec(ctx context.Context) Result
}

// QueryBuilder 每次调用 Build 都会重新构造, 中间件可以放心地多次调用
type QueryBuilder interface {
	Build() (*Query, error)
}

type Query struct {
	SQL  string
	Args []any
}
