package orm

import (
	"context"

	"github.com/startdusk/dbrepo/orm/mapper"
)

// ExecuteBySql 执行语句, 返回受影响的行数
func (r *Repository) ExecuteBySql(ctx context.Context, query string, args ...any) (int64, error) {
	return RawQuery[any](r, query, args...).Exec(ctx).RowsAffected()
}

// ExecuteByProc 调用存储过程, 返回受影响的行数
func (r *Repository) ExecuteByProc(ctx context.Context, name string, args ...any) (int64, error) {
	q, err := r.procedure(name, args, false)
	if err != nil {
		return 0, err
	}
	return q.Exec(ctx).RowsAffected()
}

// FindObject 第一行第一列的值, 没有数据的时候返回 nil
func (r *Repository) FindObject(ctx context.Context, query string, args ...any) (any, error) {
	val, _, err := RawQuery[any](r, query, args...).Scalar(ctx)
	return val, err
}

// FindTable 第一个结果集, 带上列的信息
func (r *Repository) FindTable(ctx context.Context, query string, args ...any) (*mapper.Table, error) {
	return RawQuery[mapper.Record](r, query, args...).Table(ctx)
}

func (r *Repository) procedure(name string, args []any, query bool) (*RawQuerier[any], error) {
	q, err := r.dialect.procedure(name, args, query)
	if err != nil {
		return nil, err
	}
	raw := RawQuery[any](r, q, args...)
	raw.typ = TypeProcedure
	return raw, nil
}

// FindByProc 调用存储过程, 读取第一个结果集
func FindByProc[T any](ctx context.Context, r *Repository, name string, args ...any) ([]T, error) {
	q, err := r.dialect.procedure(name, args, true)
	if err != nil {
		return nil, err
	}
	raw := RawQuery[T](r, q, args...)
	raw.typ = TypeProcedure
	return raw.All(ctx)
}

// FindListBySql T 可以是 map, mapper.Record, 实体或者单个值
func FindListBySql[T any](ctx context.Context, r *Repository, query string, args ...any) ([]T, error) {
	return RawQuery[T](r, query, args...).All(ctx)
}

// FindEntityBySql 没有数据的时候返回 ErrNoRows
func FindEntityBySql[T any](ctx context.Context, r *Repository, query string, args ...any) (*T, error) {
	return RawQuery[T](r, query, args...).Get(ctx)
}

// FindMultiple 一次执行返回多个结果集, 每个结果集按照同样的方式物化
func FindMultiple[T any](ctx context.Context, r *Repository, query string, args ...any) ([][]T, error) {
	return RawQuery[T](r, query, args...).Multiple(ctx)
}
