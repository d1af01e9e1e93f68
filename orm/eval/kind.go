package eval

import (
	"database/sql"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Kind 求值结果的类型分类
type Kind int

const (
	Object Kind = iota
	String
	Int16
	Int32
	Int64
	Decimal
	Float64
	Time
	Bool
	Byte
	Char
	Float32
)

var kindNames = [...]string{
	Object:  "object",
	String:  "string",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Decimal: "decimal",
	Float64: "float64",
	Time:    "time",
	Bool:    "bool",
	Byte:    "byte",
	Char:    "char",
	Float32: "float32",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Type 声明的类型, Nullable 表示结果允许为 null
type Type struct {
	Kind     Kind
	Nullable bool
}

var (
	nullableKinds = map[reflect.Type]Kind{
		reflect.TypeOf(sql.NullString{}):      String,
		reflect.TypeOf(sql.NullInt16{}):       Int16,
		reflect.TypeOf(sql.NullInt32{}):       Int32,
		reflect.TypeOf(sql.NullInt64{}):       Int64,
		reflect.TypeOf(sql.NullFloat64{}):     Float64,
		reflect.TypeOf(sql.NullBool{}):        Bool,
		reflect.TypeOf(sql.NullByte{}):        Byte,
		reflect.TypeOf(sql.NullTime{}):        Time,
		reflect.TypeOf(decimal.NullDecimal{}): Decimal,
	}
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// TypeOf 指针和 sql.NullXXX 都是可以为 null 的类型.
// 没有对应分类的类型都归到 Object, 原样返回
func TypeOf(typ reflect.Type) Type {
	if typ == nil {
		return Type{Kind: Object, Nullable: true}
	}
	if k, ok := nullableKinds[typ]; ok {
		return Type{Kind: k, Nullable: true}
	}
	if typ.Kind() == reflect.Pointer {
		inner := TypeOf(typ.Elem())
		inner.Nullable = true
		return inner
	}
	switch typ {
	case timeType:
		return Type{Kind: Time}
	case decimalType:
		return Type{Kind: Decimal}
	}
	switch typ.Kind() {
	case reflect.String:
		return Type{Kind: String}
	case reflect.Int16:
		return Type{Kind: Int16}
	case reflect.Int32:
		return Type{Kind: Int32}
	case reflect.Int64:
		return Type{Kind: Int64}
	case reflect.Float64:
		return Type{Kind: Float64}
	case reflect.Float32:
		return Type{Kind: Float32}
	case reflect.Bool:
		return Type{Kind: Bool}
	case reflect.Uint8:
		return Type{Kind: Byte}
	}
	return Type{Kind: Object}
}
