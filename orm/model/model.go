package model

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

const (
	tagKeyColumn     = "column"
	tagKeyPrimaryKey = "pk"
)

// TableName 用户实现这个接口来返回自定义的表名
type TableName interface {
	TableName() string
}

// Registry 代表元数据的注册中心
type Registry interface {
	Get(val any) (*Model, error)
	Register(val any, opts ...ModelOption) (*Model, error)
}

type Model struct {
	TableName string
	// Fields 按照结构体字段的声明顺序排列
	Fields []*Field
	// FieldMap 字段名到字段的映射
	FieldMap map[string]*Field
	// ColumnMap 列名到字段的映射
	ColumnMap map[string]*Field
	// PrimaryKeys 可能是联合主键
	PrimaryKeys []*Field
}

type ModelOption func(m *Model) error

type Field struct {
	// 列名
	ColName string
	// Go 字段名
	GoName string
	// 字段类型
	Type reflect.Type
	// 相对于结构体起始地址的偏移量
	Offset uintptr
	// 用于 reflect.Value.FieldByIndex, 支持组合(匿名嵌入)的结构体
	Index []int

	PrimaryKey bool
}

// FieldByColumn 忽略大小写查找列, 先精确匹配列名, 再匹配 Go 字段名
func (m *Model) FieldByColumn(name string) (*Field, bool) {
	if fd, ok := m.ColumnMap[name]; ok {
		return fd, true
	}
	for _, fd := range m.Fields {
		if strings.EqualFold(fd.ColName, name) || strings.EqualFold(fd.GoName, name) {
			return fd, true
		}
	}
	return nil, false
}

// registry 为什么要用reflect.Type作为key
// 因为有同名结构体但表名不一样的需求
// 如: buyer下的User 和 seller下的User
type registry struct {
	models map[reflect.Type]*Model

	// 使用严格的读写锁, 采用double check的读写锁写法就没有线程覆盖的问题
	lock sync.RWMutex
}

func NewRegistry() Registry {
	return &registry{
		models: make(map[reflect.Type]*Model, 64),
	}
}

func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	r.lock.RLock()
	m, ok := r.models[typ]
	r.lock.RUnlock()
	if ok {
		return m, nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	// double check 写法, 保证不重复创建对象
	m, ok = r.models[typ]
	if ok {
		return m, nil
	}

	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	r.models[typ] = m
	return m, nil
}

func (r *registry) Register(val any, opts ...ModelOption) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err = opt(m); err != nil {
			return nil, err
		}
	}
	r.lock.Lock()
	r.models[reflect.TypeOf(val)] = m
	r.lock.Unlock()
	return m, nil
}

// parseModel 只支持输入指针类型的结构体
func (r *registry) parseModel(entity any) (*Model, error) {
	typ := reflect.TypeOf(entity)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	elemTyp := typ.Elem()

	m := &Model{
		FieldMap:  make(map[string]*Field, elemTyp.NumField()),
		ColumnMap: make(map[string]*Field, elemTyp.NumField()),
	}
	if err := r.parseFields(m, elemTyp, nil, 0); err != nil {
		return nil, err
	}

	if len(m.PrimaryKeys) == 0 {
		// 没有声明主键的时候, 约定 ID 字段就是主键
		for _, fd := range m.Fields {
			if strings.EqualFold(fd.GoName, "id") {
				fd.PrimaryKey = true
				m.PrimaryKeys = append(m.PrimaryKeys, fd)
				break
			}
		}
	}

	var tableName string
	if tn, ok := entity.(TableName); ok {
		tableName = tn.TableName()
	}
	if tableName == "" {
		tableName = underscoreName(elemTyp.Name())
	}
	m.TableName = tableName
	return m, nil
}

func (r *registry) parseFields(m *Model, typ reflect.Type, parent []int, base uintptr) error {
	for i := 0; i < typ.NumField(); i++ {
		fd := typ.Field(i)
		index := append(append(make([]int, 0, len(parent)+1), parent...), i)
		// 组合: 把匿名嵌入的结构体字段平铺到当前模型
		if fd.Anonymous && fd.Type.Kind() == reflect.Struct {
			if err := r.parseFields(m, fd.Type, index, base+fd.Offset); err != nil {
				return err
			}
			continue
		}
		if !fd.IsExported() {
			continue
		}
		pair, err := r.parseTag(fd.Tag)
		if err != nil {
			return err
		}
		colName := pair[tagKeyColumn]
		if colName == "" {
			colName = underscoreName(fd.Name)
		}
		f := &Field{
			ColName:    colName,
			GoName:     fd.Name,
			Type:       fd.Type,
			Offset:     base + fd.Offset,
			Index:      index,
			PrimaryKey: pair[tagKeyPrimaryKey] == "true",
		}
		m.Fields = append(m.Fields, f)
		m.FieldMap[f.GoName] = f
		m.ColumnMap[f.ColName] = f
		if f.PrimaryKey {
			m.PrimaryKeys = append(m.PrimaryKeys, f)
		}
	}
	return nil
}

func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag, ok := tag.Lookup("orm")
	if !ok {
		return map[string]string{}, nil
	}
	pairs := strings.Split(ormTag, ",")
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		segs := strings.Split(pair, "=")
		if len(segs) != 2 {
			return nil, errs.NewErrIinvalidTagContent(pair)
		}
		tags[segs[0]] = segs[1]
	}
	return tags, nil
}

func ModelWithTableName(tableName string) ModelOption {
	return func(m *Model) error {
		m.TableName = tableName
		return nil
	}
}

func ModelWithColumnName(field string, colName string) ModelOption {
	return func(m *Model) error {
		fd, ok := m.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		delete(m.ColumnMap, fd.ColName)
		fd.ColName = colName
		m.ColumnMap[colName] = fd
		return nil
	}
}

// ModelWithPrimaryKey 覆盖主键声明
func ModelWithPrimaryKey(fields ...string) ModelOption {
	return func(m *Model) error {
		for _, fd := range m.PrimaryKeys {
			fd.PrimaryKey = false
		}
		m.PrimaryKeys = m.PrimaryKeys[:0]
		for _, name := range fields {
			fd, ok := m.FieldMap[name]
			if !ok {
				return errs.NewErrUnknownField(name)
			}
			fd.PrimaryKey = true
			m.PrimaryKeys = append(m.PrimaryKeys, fd)
		}
		return nil
	}
}

// underscoreName 驼峰名字符串转下划线命名
func underscoreName(name string) string {
	runes := []rune(name)
	var buf []rune
	for i, v := range runes {
		if unicode.IsUpper(v) {
			if i != 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && !unicode.IsUpper(runes[i+1]))) {
				buf = append(buf, '_')
			}
			buf = append(buf, unicode.ToLower(v))
		} else {
			buf = append(buf, v)
		}
	}
	return string(buf)
}
