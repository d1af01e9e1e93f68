package eval

import (
	"database/sql/driver"
	"math"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// form 同一个分类的两种形态, nullable 返回 *T 或者 nil
type form struct {
	strict   func(v any) (any, error)
	nullable func(v any) (any, error)
}

func newForm[T any](kind Kind, conv func(v any) (T, bool)) form {
	return form{
		strict: func(v any) (any, error) {
			if v == nil {
				return nil, errs.ErrNullValue
			}
			t, ok := conv(v)
			if !ok {
				return nil, errs.NewErrEvaluate(v, kind)
			}
			return t, nil
		},
		nullable: func(v any) (any, error) {
			if v == nil {
				return (*T)(nil), nil
			}
			t, ok := conv(v)
			if !ok {
				return nil, errs.NewErrEvaluate(v, kind)
			}
			return &t, nil
		},
	}
}

var forms = map[Kind]form{
	String:  newForm(String, toString),
	Int16:   newForm(Int16, toInteger[int16]),
	Int32:   newForm(Int32, toInteger[int32]),
	Int64:   newForm(Int64, toInteger[int64]),
	Decimal: newForm(Decimal, toDecimal),
	Float64: newForm(Float64, toFloat64),
	Time:    newForm(Time, toTime),
	Bool:    newForm(Bool, toBool),
	Byte:    newForm(Byte, toInteger[uint8]),
	Char:    newForm(Char, toChar),
	Float32: newForm(Float32, toFloat32),
}

// Evaluate 按照声明的类型对表达式求值.
// Constant 直接返回字面量, Convert 对操作数求值, 其余的节点先执行再按照类型分类转换
func Evaluate(e Expr, typ Type) (any, error) {
	switch ex := e.(type) {
	case Constant:
		return ex.Value, nil
	case Convert:
		return Evaluate(ex.Operand, typ)
	}
	raw, _, err := invoke(e)
	if err != nil {
		return nil, err
	}
	return dispatch(raw, typ)
}

// Value 使用表达式自身的静态类型求值
func Value(e Expr) (any, error) {
	switch ex := e.(type) {
	case Constant:
		return ex.Value, nil
	case Convert:
		return Value(ex.Operand)
	}
	raw, typ, err := invoke(e)
	if err != nil {
		return nil, err
	}
	return dispatch(raw, TypeOf(typ))
}

// dispatch Object 原样返回
func dispatch(raw any, typ Type) (any, error) {
	if typ.Kind == Object {
		return raw, nil
	}
	f, ok := forms[typ.Kind]
	if !ok {
		return nil, errs.NewErrEvaluate(raw, typ.Kind)
	}
	v := normalize(raw)
	if typ.Nullable {
		return f.nullable(v)
	}
	return f.strict(v)
}

// normalize 去掉指针和 sql.NullXXX 的包装
func normalize(raw any) any {
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	switch v := rv.Interface().(type) {
	case decimal.Decimal, time.Time:
		return v
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}
		return v.Decimal
	case driver.Valuer:
		val, err := v.Value()
		if err != nil {
			return v
		}
		return val
	default:
		return v
	}
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func toInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// toInteger 超出 T 的范围的时候失败, 不会截断
func toInteger[T int16 | int32 | int64 | uint8](v any) (T, bool) {
	i, ok := toInt64(v)
	if !ok {
		return 0, false
	}
	t := T(i)
	if int64(t) != i {
		return 0, false
	}
	return t, true
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f, true
	}
	return 0, false
}

func toFloat32(v any) (float32, bool) {
	f, ok := toFloat64(v)
	if !ok || math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return float32(f), true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, true
	case string:
		res, err := decimal.NewFromString(d)
		return res, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return decimal.NewFromInt(int64(rv.Uint())), true
	case reflect.Float32:
		return decimal.NewFromFloat32(float32(rv.Float())), true
	case reflect.Float64:
		return decimal.NewFromFloat(rv.Float()), true
	}
	return decimal.Decimal{}, false
}

func toTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

func toBool(v any) (bool, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

func toChar(v any) (rune, bool) {
	if s, ok := toString(v); ok {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) {
			return 0, false
		}
		return r, true
	}
	i, ok := toInteger[int32](v)
	if !ok || !utf8.ValidRune(i) {
		return 0, false
	}
	return i, true
}
