package ordering

import (
	"cmp"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	valuerType  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// compare 空值排在最前面
func compare(a, b reflect.Value) int {
	a, b = unwrap(a), unwrap(b)
	switch {
	case !a.IsValid() && !b.IsValid():
		return 0
	case !a.IsValid():
		return -1
	case !b.IsValid():
		return 1
	}

	switch {
	case a.Type() == timeType && b.Type() == timeType:
		return a.Interface().(time.Time).Compare(b.Interface().(time.Time))
	case a.Type() == decimalType && b.Type() == decimalType:
		return a.Interface().(decimal.Decimal).Cmp(b.Interface().(decimal.Decimal))
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isInt(b) {
			return cmp.Compare(a.Int(), b.Int())
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if isUint(b) {
			return cmp.Compare(a.Uint(), b.Uint())
		}
	case reflect.Float32, reflect.Float64:
		if isFloat(b) {
			return cmp.Compare(a.Float(), b.Float())
		}
	case reflect.String:
		if b.Kind() == reflect.String {
			return strings.Compare(a.String(), b.String())
		}
	case reflect.Bool:
		if b.Kind() == reflect.Bool {
			return cmp.Compare(boolInt(a.Bool()), boolInt(b.Bool()))
		}
	}
	return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

// unwrap 去掉指针和 sql.NullXXX, 得到真正参与比较的值
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() {
		switch {
		case v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		case v.Type() == decimalType || v.Type() == timeType:
			return v
		case v.Type().Implements(valuerType):
			val, err := v.Interface().(driver.Valuer).Value()
			if err != nil || val == nil {
				return reflect.Value{}
			}
			return reflect.ValueOf(val)
		default:
			return v
		}
	}
	return v
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
