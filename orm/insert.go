package orm

import (
	"context"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/model"
)

type Inserter[T any] struct {
	builder

	// INSERT 语句要插入的值的结构体的列表
	values []*T

	// INSERT 语句要插入的指定的列
	columns []string

	sess Session
}

func NewInserter[T any](sess Session) *Inserter[T] {
	return &Inserter[T]{
		builder: builder{
			core: sess.getCore(),
		},
		sess: sess,
	}
}

// Columns 指定插入的列
func (i *Inserter[T]) Columns(cols ...string) *Inserter[T] {
	i.columns = cols
	return i
}

// Values 指定插入的数据
func (i *Inserter[T]) Values(vals ...*T) *Inserter[T] {
	i.values = vals
	return i
}

func (i *Inserter[T]) Build() (*Query, error) {
	if len(i.values) == 0 {
		return nil, errs.ErrInsertZeroRows
	}
	m, err := i.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	i.model = m
	i.sb.Reset()

	i.sb.WriteString("INSERT INTO ")
	// 拿到元数据, 拼接表名
	i.buildTable()

	// 一定要显式指定列的顺序, 不然我们不知道数据库中默认的顺序
	// 我们要构造 `table_name`(col1, col2)
	fields, err := i.fields()
	if err != nil {
		return nil, err
	}

	i.sb.WriteByte('(')
	for idx, field := range fields {
		if idx > 0 {
			i.sb.WriteByte(',')
		}
		i.quote(field.ColName)
	}
	i.sb.WriteByte(')')
	i.sb.WriteString(" VALUES ")
	i.args = make([]any, 0, len(i.values)*len(fields))
	for valIdx := range i.values {
		if valIdx > 0 {
			i.sb.WriteByte(',')
		}
		i.sb.WriteByte('(')
		val := i.creator(i.model, i.values[valIdx])
		for idx, field := range fields {
			if idx > 0 {
				i.sb.WriteByte(',')
			}
			// 读取结构体的参数
			arg, err := val.Field(field.GoName)
			if err != nil {
				return nil, err
			}
			if err = i.param(arg); err != nil {
				return nil, err
			}
		}
		i.sb.WriteByte(')')
	}

	return &Query{
		SQL:  i.sb.String(),
		Args: i.args,
	}, nil
}

// fields 用户没有指定列的时候插入所有的列,
// 单列整数主键在所有的值里面都是零值的时候交给数据库生成
func (i *Inserter[T]) fields() ([]*model.Field, error) {
	m := i.model
	if len(i.columns) > 0 {
		fields := make([]*model.Field, 0, len(i.columns))
		for _, fd := range i.columns {
			fdMeta, err := i.field(fd)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fdMeta)
		}
		return fields, nil
	}
	generated, err := i.generatedKey()
	if err != nil {
		return nil, err
	}
	if generated == nil {
		return m.Fields, nil
	}
	fields := make([]*model.Field, 0, len(m.Fields))
	for _, fd := range m.Fields {
		if fd != generated {
			fields = append(fields, fd)
		}
	}
	return fields, nil
}

func (i *Inserter[T]) generatedKey() (*model.Field, error) {
	var generated *model.Field
	for _, v := range i.values {
		pk, err := autoKey(i.creator, i.model, v)
		if err != nil || pk == nil {
			return nil, err
		}
		generated = pk
	}
	return generated, nil
}

func (i *Inserter[T]) Exec(ctx context.Context) Result {
	m, err := i.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	i.model = m
	return exec(ctx, i.sess, &QueryContext{
		Type:    TypeInsert,
		Builder: i,
		Model:   m,
	})
}
