package orm

import (
	"context"
	"database/sql"

	"github.com/startdusk/dbrepo/orm/mapper"
)

// RawQuerier 原生查询, SQL 和参数原样交给数据库
type RawQuerier[T any] struct {
	core
	sess Session
	sql  string
	args []any
	typ  string
}

func RawQuery[T any](sess Session, query string, args ...any) *RawQuerier[T] {
	return &RawQuerier[T]{
		sql:  query,
		args: args,
		sess: sess,
		core: sess.getCore(),
		typ:  TypeRaw,
	}
}

func (r *RawQuerier[T]) Build() (*Query, error) {
	return &Query{
		SQL:  r.sql,
		Args: r.args,
	}, nil
}

func (r *RawQuerier[T]) queryContext() *QueryContext {
	return &QueryContext{
		Type:    r.typ,
		Builder: r,
		Model:   modelOf[T](r.r),
	}
}

// Get 没有数据的时候返回 ErrNoRows
func (r *RawQuerier[T]) Get(ctx context.Context) (*T, error) {
	res := query(ctx, r.sess, r.queryContext(), func(rows *sql.Rows) (any, error) {
		t, ok, err := mapper.First[T](r.mapper, rows)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoRows
		}
		return &t, nil
	})
	t, _ := res.Result.(*T)
	return t, res.Err
}

func (r *RawQuerier[T]) GetMulti(ctx context.Context) ([]*T, error) {
	ts, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*T, len(ts))
	for i := range ts {
		res[i] = &ts[i]
	}
	return res, nil
}

// All 第一个结果集的所有行
func (r *RawQuerier[T]) All(ctx context.Context) ([]T, error) {
	res := query(ctx, r.sess, r.queryContext(), func(rows *sql.Rows) (any, error) {
		return mapper.All[T](r.mapper, rows)
	})
	if res.Err != nil {
		return nil, res.Err
	}
	v, _ := res.Result.([]T)
	return v, nil
}

// Multiple 每一个结果集一个切片
func (r *RawQuerier[T]) Multiple(ctx context.Context) ([][]T, error) {
	res := query(ctx, r.sess, r.queryContext(), func(rows *sql.Rows) (any, error) {
		return mapper.Multiple[T](r.mapper, rows)
	})
	if res.Err != nil {
		return nil, res.Err
	}
	v, _ := res.Result.([][]T)
	return v, nil
}

// Scalar 第一行第一列, 没有数据的时候 ok 为 false
func (r *RawQuerier[T]) Scalar(ctx context.Context) (T, bool, error) {
	type scalar struct {
		val T
		ok  bool
	}
	res := query(ctx, r.sess, r.queryContext(), func(rows *sql.Rows) (any, error) {
		val, ok, err := mapper.Scalar[T](rows)
		return scalar{val: val, ok: ok}, err
	})
	s, _ := res.Result.(scalar)
	return s.val, s.ok, res.Err
}

// Table 第一个结果集, 带上列的信息
func (r *RawQuerier[T]) Table(ctx context.Context) (*mapper.Table, error) {
	res := query(ctx, r.sess, r.queryContext(), func(rows *sql.Rows) (any, error) {
		return mapper.ReadTable(rows)
	})
	if res.Err != nil {
		return nil, res.Err
	}
	v, _ := res.Result.(*mapper.Table)
	return v, nil
}

func (r *RawQuerier[T]) Exec(ctx context.Context) Result {
	return exec(ctx, r.sess, r.queryContext())
}
