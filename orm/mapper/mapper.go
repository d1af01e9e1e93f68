package mapper

import (
	"database/sql"
	"iter"
	"reflect"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/model"
)

// Defaulter 实体在绑定列之前会先调用 SetDefaults 初始化默认值
type Defaulter interface {
	SetDefaults()
}

// Mapper 把结果集物化成 map, Record, 实体或者单值.
// 所有的方法都不会关闭 rows, 由调用方负责
type Mapper struct {
	bindings *bindingCache
}

type Option func(m *mapperConfig)

type mapperConfig struct {
	registry  model.Registry
	cacheSize int
}

// WithRegistry 使用和仓储相同的元数据, 自定义列名才会生效
func WithRegistry(r model.Registry) Option {
	return func(m *mapperConfig) {
		m.registry = r
	}
}

func WithCacheSize(size int) Option {
	return func(m *mapperConfig) {
		if size > 0 {
			m.cacheSize = size
		}
	}
}

func New(opts ...Option) *Mapper {
	cfg := &mapperConfig{
		cacheSize: 512,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = model.NewRegistry()
	}
	return &Mapper{
		bindings: newBindingCache(cfg.registry, cfg.cacheSize),
	}
}

var defaultMapper = New()

func orDefault(m *Mapper) *Mapper {
	if m == nil {
		return defaultMapper
	}
	return m
}

// rowReader 读取当前行, 每个结果集构造一次
type rowReader[T any] func(rows *sql.Rows) (T, error)

func newReader[T any](m *Mapper, shape Shape, rows *sql.Rows) (rowReader[T], error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	switch s := shape.(type) {
	case MapShape:
		return func(rows *sql.Rows) (T, error) {
			var t T
			vals, err := scanValues(rows, len(cols))
			if err != nil {
				return t, err
			}
			mp := reflect.MakeMapWithSize(s.Type, len(cols))
			for i, col := range cols {
				v := reflect.ValueOf(&vals[i]).Elem()
				mp.SetMapIndex(reflect.ValueOf(col).Convert(s.Type.Key()), v)
			}
			return mp.Interface().(T), nil
		}, nil
	case RecordShape:
		idx := newColumnIndex(cols)
		return func(rows *sql.Rows) (T, error) {
			var t T
			vals, err := scanValues(rows, len(cols))
			if err != nil {
				return t, err
			}
			return any(Record{cols: idx, values: vals}).(T), nil
		}, nil
	case EntityShape:
		b, err := m.bindings.get(s.Type, cols)
		if err != nil {
			return nil, err
		}
		return func(rows *sql.Rows) (T, error) {
			var t T
			vals, err := scanValues(rows, len(cols))
			if err != nil {
				return t, err
			}
			ptr := reflect.New(s.Type)
			if d, ok := ptr.Interface().(Defaulter); ok {
				d.SetDefaults()
			}
			elem := ptr.Elem()
			for i, fd := range b.fields {
				// null 不覆盖成员的值
				if fd == nil || vals[i] == nil {
					continue
				}
				if err = assign(elem.FieldByIndex(fd.Index), vals[i]); err != nil {
					return t, errs.NewErrConvert(cols[i], fd.GoName, vals[i], err)
				}
			}
			if s.Ptr {
				return ptr.Interface().(T), nil
			}
			return elem.Interface().(T), nil
		}, nil
	case ScalarShape:
		return func(rows *sql.Rows) (T, error) {
			var t T
			vals, err := scanValues(rows, len(cols))
			if err != nil {
				return t, err
			}
			if len(vals) == 0 || vals[0] == nil {
				return t, nil
			}
			if err = assign(reflect.ValueOf(&t).Elem(), vals[0]); err != nil {
				return t, errs.NewErrConvert(cols[0], s.Type.String(), vals[0], err)
			}
			return t, nil
		}, nil
	}
	return nil, errs.NewErrUnsupportedExpressionType(shape)
}

func scanValues(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

// Iter 惰性地读取当前结果集, 每一行只会被读取一次.
// 转换失败的行会带着 error 交给调用方, 是否继续由调用方决定
func Iter[T any](m *Mapper, rows *sql.Rows) iter.Seq2[T, error] {
	return iterShape[T](orDefault(m), ShapeOf[T](), rows)
}

func iterShape[T any](m *Mapper, shape Shape, rows *sql.Rows) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		read, err := newReader[T](m, shape, rows)
		if err != nil {
			yield(zero, err)
			return
		}
		for rows.Next() {
			if !yield(read(rows)) {
				return
			}
		}
		if err = rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// All 读完当前结果集, 没有数据的时候返回空切片而不是 nil
func All[T any](m *Mapper, rows *sql.Rows) ([]T, error) {
	res := make([]T, 0, 8)
	for t, err := range Iter[T](m, rows) {
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}

// First 只读第一行, 剩下的行交给 rows.Close 丢弃
func First[T any](m *Mapper, rows *sql.Rows) (T, bool, error) {
	for t, err := range Iter[T](m, rows) {
		if err != nil {
			var zero T
			return zero, false, err
		}
		return t, true, nil
	}
	var zero T
	return zero, false, nil
}

// Multiple 按顺序读取每一个结果集, 当前的结果集读完之后才会推进到下一个
func Multiple[T any](m *Mapper, rows *sql.Rows) ([][]T, error) {
	res := make([][]T, 0, 2)
	for {
		set, err := All[T](m, rows)
		if err != nil {
			return nil, err
		}
		res = append(res, set)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Scalar 第一行第一列, 没有数据的时候 ok 为 false.
// 第一列是 null 的时候返回零值, ok 依旧为 true
func Scalar[T any](rows *sql.Rows) (T, bool, error) {
	shape := ScalarShape{Type: reflect.TypeOf((*T)(nil)).Elem()}
	for t, err := range iterShape[T](defaultMapper, shape, rows) {
		if err != nil {
			var zero T
			return zero, false, err
		}
		return t, true, nil
	}
	var zero T
	return zero, false, nil
}

// ReadTable 读取当前结果集的列信息和所有的行
func ReadTable(rows *sql.Rows) (*Table, error) {
	cols, err := columnsOf(rows)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	idx := newColumnIndex(names)
	tbl := &Table{Columns: cols, Rows: make([]Record, 0, 8)}
	for rows.Next() {
		vals, err := scanValues(rows, len(cols))
		if err != nil {
			return nil, err
		}
		tbl.Rows = append(tbl.Rows, Record{cols: idx, values: vals})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tbl, nil
}
