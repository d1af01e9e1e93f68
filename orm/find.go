package orm

import (
	"context"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/model"
	"github.com/startdusk/dbrepo/orm/ordering"
)

// Queryable 返回实体的查询构造器, 用于组合更复杂的查询
func Queryable[T any](r *Repository) *Selector[T] {
	return NewSelector[T](r)
}

// FindEntity 按照主键查找, 联合主键按照声明的顺序传值.
// 没有数据的时候返回 ErrNoRows
func FindEntity[T any](ctx context.Context, r *Repository, keys ...any) (*T, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	ps, err := keyPredicates(m, keys)
	if err != nil {
		return nil, err
	}
	return NewSelector[T](r).Where(ps...).Get(ctx)
}

// FindEntityWhere 满足条件的第一条数据
func FindEntityWhere[T any](ctx context.Context, r *Repository, ps ...Predicate) (*T, error) {
	return NewSelector[T](r).Where(ps...).Get(ctx)
}

type ListOption func(l *listOptions)

type listOptions struct {
	where   []Predicate
	columns []Selectable
	order   ordering.Spec
}

func Where(ps ...Predicate) ListOption {
	return func(l *listOptions) {
		l.where = append(l.where, ps...)
	}
}

// Select 只查询部分列, 没有查询的字段保持零值
func Select(cols ...Selectable) ListOption {
	return func(l *listOptions) {
		l.columns = cols
	}
}

func OrderBy(spec ordering.Spec) ListOption {
	return func(l *listOptions) {
		l.order = spec
	}
}

// FindList 没有数据的时候返回空切片
func FindList[T any](ctx context.Context, r *Repository, opts ...ListOption) ([]*T, error) {
	var l listOptions
	for _, opt := range opts {
		opt(&l)
	}
	s := NewSelector[T](r).Where(l.where...)
	if len(l.columns) > 0 {
		s.Select(l.columns...)
	}
	return ordering.Apply(s, l.order).GetMulti(ctx)
}

func keyPredicates(m *model.Model, keys []any) ([]Predicate, error) {
	pks := m.PrimaryKeys
	if len(pks) == 0 {
		return nil, errs.ErrNoPrimaryKey
	}
	if len(keys) != len(pks) {
		return nil, errs.NewErrKeyCount(len(pks), len(keys))
	}
	ps := make([]Predicate, 0, len(pks))
	for i, pk := range pks {
		ps = append(ps, C(pk.GoName).Eq(keys[i]))
	}
	return ps, nil
}
