package orm

import (
	"context"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Updater 构造 UPDATE 语句.
// Set 里面的 Column 表示从 Update 传入的实体里面取值, Assignment 直接使用给定的值
type Updater[T any] struct {
	builder
	val     *T
	assigns []Assignable
	where   []Predicate

	sess Session
}

func NewUpdater[T any](sess Session) *Updater[T] {
	return &Updater[T]{
		builder: builder{
			core: sess.getCore(),
		},
		sess: sess,
	}
}

func (u *Updater[T]) Update(t *T) *Updater[T] {
	u.val = t
	return u
}

func (u *Updater[T]) Set(assigns ...Assignable) *Updater[T] {
	u.assigns = assigns
	return u
}

func (u *Updater[T]) Where(ps ...Predicate) *Updater[T] {
	u.where = ps
	return u
}

func (u *Updater[T]) Build() (*Query, error) {
	if len(u.assigns) == 0 {
		return nil, errs.ErrNoUpdatedColumns
	}
	m, err := u.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	u.model = m
	u.sb.Reset()
	u.args = nil

	u.sb.WriteString("UPDATE ")
	u.buildTable()
	u.sb.WriteString(" SET ")
	for idx, a := range u.assigns {
		if idx > 0 {
			u.sb.WriteString(", ")
		}
		switch assign := a.(type) {
		case Column:
			if err = u.buildColumnValue(assign.name); err != nil {
				return nil, err
			}
		case Assignment:
			if err = u.buildColumn(assign.col); err != nil {
				return nil, err
			}
			u.sb.WriteString(" = ")
			if err = u.param(assign.val); err != nil {
				return nil, err
			}
		default:
			return nil, errs.NewErrUnsupportedAssignable(a)
		}
	}
	if err = u.buildWhere(u.where); err != nil {
		return nil, err
	}
	return &Query{
		SQL:  u.sb.String(),
		Args: u.args,
	}, nil
}

// buildColumnValue col = 实体里面对应字段的值
func (u *Updater[T]) buildColumnValue(name string) error {
	if u.val == nil {
		return errs.NewErrUnsupportedAssignable(C(name))
	}
	fd, err := u.field(name)
	if err != nil {
		return err
	}
	u.quote(fd.ColName)
	u.sb.WriteString(" = ")
	arg, err := u.creator(u.model, u.val).Field(fd.GoName)
	if err != nil {
		return err
	}
	return u.param(arg)
}

func (u *Updater[T]) Exec(ctx context.Context) Result {
	m, err := u.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	u.model = m
	return exec(ctx, u.sess, &QueryContext{
		Type:    TypeUpdate,
		Builder: u,
		Model:   m,
	})
}
