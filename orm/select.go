package orm

import (
	"context"
	"database/sql"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/mapper"
	"github.com/startdusk/dbrepo/orm/ordering"
)

// Selectable select 指定列
// 避免用户使用数据库列 存在耦合问题(用户应该使用Go结构体的字段名, 就能与数据库表字段解耦)
// 使用Go的结构体字段名同时也可以避免传入的SQL列名存在SQL注入问题
type Selectable interface {
	selectable()
}

var _ ordering.Orderable[*Selector[any]] = &Selector[any]{}

type Selector[T any] struct {
	builder
	tableName string
	where     []Predicate
	// 指定 select 的列
	columns []Selectable
	orderBy []ordering.Key

	sess Session
}

func NewSelector[T any](sess Session) *Selector[T] {
	return &Selector[T]{
		builder: builder{
			core: sess.getCore(),
		},
		sess: sess,
	}
}

func (s *Selector[T]) Select(cols ...Selectable) *Selector[T] {
	s.columns = cols
	return s
}

func (s *Selector[T]) From(tableName string) *Selector[T] {
	s.tableName = tableName
	return s
}

func (s *Selector[T]) Where(where ...Predicate) *Selector[T] {
	s.where = where
	return s
}

// OrderBy 主排序键, 会清空之前的排序键
func (s *Selector[T]) OrderBy(key ordering.Key) *Selector[T] {
	s.orderBy = append(s.orderBy[:0:0], key)
	return s
}

// ThenBy 次排序键, 按照调用的顺序排列
func (s *Selector[T]) ThenBy(key ordering.Key) *Selector[T] {
	s.orderBy = append(s.orderBy, key)
	return s
}

func (s *Selector[T]) Build() (*Query, error) {
	var err error
	s.model, err = s.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	s.sb.Reset()
	s.args = nil

	s.sb.WriteString("SELECT ")
	if err = s.buildSelectColumns(); err != nil {
		return nil, err
	}
	s.sb.WriteString(" FROM ")

	if s.tableName == "" {
		s.buildTable()
	} else {
		// 这里是用户传进来的表名, 用户应该保证它的正确性
		// 如 `tableName`
		// 如 `db`.`tableName`
		// 我们不处理引号的问题
		s.sb.WriteString(s.tableName)
	}

	if err = s.buildWhere(s.where); err != nil {
		return nil, err
	}
	if err = s.buildOrderBy(); err != nil {
		return nil, err
	}

	return &Query{
		SQL:  s.sb.String(),
		Args: s.args,
	}, nil
}

func (s *Selector[T]) buildOrderBy() error {
	if len(s.orderBy) == 0 {
		return nil
	}
	s.sb.WriteString(" ORDER BY ")
	for i, key := range s.orderBy {
		if i > 0 {
			s.sb.WriteString(", ")
		}
		fd, err := s.fieldByPath(key.Path)
		if err != nil {
			return err
		}
		s.quote(fd.ColName)
		s.sb.WriteByte(' ')
		s.sb.WriteString(key.Direction.String())
	}
	return nil
}

// buildSelectColumns 构建 SELECT 的列
func (s *Selector[T]) buildSelectColumns() error {
	if len(s.columns) == 0 {
		// 没有指定列
		s.sb.WriteByte('*')
		return nil
	}
	for i, col := range s.columns {
		if i > 0 {
			s.sb.WriteString(", ")
		}
		switch c := col.(type) {
		case Column:
			if err := s.buildColumn(c.name); err != nil {
				return err
			}
		case Aggregate:
			if err := s.buildAggregate(c); err != nil {
				return err
			}
		case RawExpr:
			// 用户输入SQL
			s.sb.WriteString(c.raw)
			s.addArgs(c.args...)
		default:
			return errs.NewErrUnsupportedExpressionType(col)
		}
	}
	return nil
}

func (s *Selector[T]) Get(ctx context.Context) (*T, error) {
	var err error
	if s.model, err = s.r.Get(new(T)); err != nil {
		return nil, err
	}
	res := query(ctx, s.sess, &QueryContext{
		Type:    TypeSelect,
		Builder: s,
		Model:   s.model,
	}, func(rows *sql.Rows) (any, error) {
		t, ok, err := mapper.First[*T](s.mapper, rows)
		if err != nil {
			return nil, err
		}
		if !ok {
			// 返回要和sql包语义一致
			return nil, ErrNoRows
		}
		return t, nil
	})
	t, _ := res.Result.(*T)
	return t, res.Err
}

// GetMulti 没有数据的时候返回空切片
func (s *Selector[T]) GetMulti(ctx context.Context) ([]*T, error) {
	var err error
	if s.model, err = s.r.Get(new(T)); err != nil {
		return nil, err
	}
	res := query(ctx, s.sess, &QueryContext{
		Type:    TypeSelect,
		Builder: s,
		Model:   s.model,
	}, func(rows *sql.Rows) (any, error) {
		return mapper.All[*T](s.mapper, rows)
	})
	if res.Err != nil {
		return nil, res.Err
	}
	ts, _ := res.Result.([]*T)
	return ts, nil
}
