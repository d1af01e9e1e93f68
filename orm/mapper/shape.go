package mapper

import (
	"database/sql"
	"reflect"
	"time"
)

// Shape 物化的目标形态, 是一个封闭的集合:
// MapShape, RecordShape, EntityShape, ScalarShape.
// 在调用点通过类型参数静态地解析一次, 不会在每一行上重新判断
type Shape interface {
	shape()
}

// MapShape map[string]any, 每一列都是一个 entry
type MapShape struct {
	Type reflect.Type
}

// RecordShape 动态记录, 保留列的顺序
type RecordShape struct {
	// Boxed 目标类型是 any, 需要装箱
	Boxed bool
}

// EntityShape 强类型的结构体
type EntityShape struct {
	// Type 一定是结构体类型
	Type reflect.Type
	// Ptr 目标是不是结构体指针
	Ptr bool
}

// ScalarShape 单值, 取每一行的第一列
type ScalarShape struct {
	Type reflect.Type
}

func (MapShape) shape()    {}
func (RecordShape) shape() {}
func (EntityShape) shape() {}
func (ScalarShape) shape() {}

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
	recordType  = reflect.TypeOf(Record{})
)

// ShapeOf 根据类型参数判断物化形态
func ShapeOf[T any]() Shape {
	return shapeOf(reflect.TypeOf((*T)(nil)).Elem())
}

func shapeOf(typ reflect.Type) Shape {
	switch {
	case typ == recordType:
		return RecordShape{}
	case typ.Kind() == reflect.Interface && typ.NumMethod() == 0:
		return RecordShape{Boxed: true}
	case typ.Kind() == reflect.Map && typ.Key().Kind() == reflect.String &&
		typ.Elem().Kind() == reflect.Interface && typ.Elem().NumMethod() == 0:
		return MapShape{Type: typ}
	}

	if isValueStruct(typ) {
		return ScalarShape{Type: typ}
	}
	if typ.Kind() == reflect.Struct {
		return EntityShape{Type: typ}
	}
	if typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct && !isValueStruct(typ.Elem()) {
		return EntityShape{Type: typ.Elem(), Ptr: true}
	}
	return ScalarShape{Type: typ}
}

// isValueStruct time.Time, sql.NullXXX, decimal.Decimal 这种结构体其实是单值
func isValueStruct(typ reflect.Type) bool {
	if typ.Kind() != reflect.Struct {
		return false
	}
	return typ == timeType || reflect.PointerTo(typ).Implements(scannerType)
}
