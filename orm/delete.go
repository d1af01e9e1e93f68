package orm

import (
	"context"
)

type Deleter[T any] struct {
	builder
	where []Predicate

	sess Session
}

func NewDeleter[T any](sess Session) *Deleter[T] {
	return &Deleter[T]{
		builder: builder{
			core: sess.getCore(),
		},
		sess: sess,
	}
}

// Where 没有条件的时候会删除整张表的数据
func (d *Deleter[T]) Where(ps ...Predicate) *Deleter[T] {
	d.where = ps
	return d
}

func (d *Deleter[T]) Build() (*Query, error) {
	m, err := d.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	d.model = m
	d.sb.Reset()
	d.args = nil

	d.sb.WriteString("DELETE FROM ")
	d.buildTable()
	if err = d.buildWhere(d.where); err != nil {
		return nil, err
	}
	return &Query{
		SQL:  d.sb.String(),
		Args: d.args,
	}, nil
}

func (d *Deleter[T]) Exec(ctx context.Context) Result {
	m, err := d.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	d.model = m
	return exec(ctx, d.sess, &QueryContext{
		Type:    TypeDelete,
		Builder: d,
		Model:   m,
	})
}
