package mapper

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// assign 把驱动返回的非空值写到 dst 上, dst 必须可写.
// 指针会分配新对象, 实现了 sql.Scanner 的类型交给 Scan 处理
func assign(dst reflect.Value, src any) error {
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if dst.CanAddr() {
		if sc, ok := dst.Addr().Interface().(sql.Scanner); ok {
			return sc.Scan(src)
		}
	}

	sv := reflect.ValueOf(src)
	// 类型完全一致的时候直接赋值, []byte 需要复制, 驱动会复用底层数组
	if sv.Type() == dst.Type() {
		if b, ok := src.([]byte); ok {
			dst.SetBytes(append([]byte(nil), b...))
			return nil
		}
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Interface:
		if sv.Type().Implements(dst.Type()) {
			dst.Set(sv)
			return nil
		}
	case reflect.String:
		return assignString(dst, src)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return assignInt(dst, src)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return assignUint(dst, src)
	case reflect.Float32, reflect.Float64:
		return assignFloat(dst, src)
	case reflect.Bool:
		return assignBool(dst, src)
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			switch v := src.(type) {
			case []byte:
				dst.SetBytes(append([]byte(nil), v...))
				return nil
			case string:
				dst.SetBytes([]byte(v))
				return nil
			}
		}
	case reflect.Struct:
		if dst.Type() == timeType {
			t, err := asTime(src)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return fmt.Errorf("不支持从 %T 转换到 %s", src, dst.Type())
}

func assignString(dst reflect.Value, src any) error {
	switch v := src.(type) {
	case string:
		dst.SetString(v)
	case []byte:
		dst.SetString(string(v))
	case time.Time:
		dst.SetString(v.Format(time.RFC3339Nano))
	case bool:
		dst.SetString(strconv.FormatBool(v))
	default:
		sv := reflect.ValueOf(src)
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetString(strconv.FormatInt(sv.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetString(strconv.FormatUint(sv.Uint(), 10))
		case reflect.Float32, reflect.Float64:
			dst.SetString(strconv.FormatFloat(sv.Float(), 'g', -1, sv.Type().Bits()))
		default:
			return fmt.Errorf("不支持从 %T 转换到 %s", src, dst.Type())
		}
	}
	return nil
}

func assignInt(dst reflect.Value, src any) error {
	var i int64
	switch v := src.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		i = n
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		i = n
	case bool:
		if v {
			i = 1
		}
	default:
		sv := reflect.ValueOf(src)
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i = sv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := sv.Uint()
			if u > math.MaxInt64 {
				return fmt.Errorf("%d 超出 %s 的范围", u, dst.Type())
			}
			i = int64(u)
		case reflect.Float32, reflect.Float64:
			f := sv.Float()
			if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
				return fmt.Errorf("%v 不是整数", f)
			}
			i = int64(f)
		default:
			return fmt.Errorf("不支持从 %T 转换到 %s", src, dst.Type())
		}
	}
	if dst.OverflowInt(i) {
		return fmt.Errorf("%d 超出 %s 的范围", i, dst.Type())
	}
	dst.SetInt(i)
	return nil
}

func assignUint(dst reflect.Value, src any) error {
	var u uint64
	switch v := src.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		u = n
	case []byte:
		n, err := strconv.ParseUint(strings.TrimSpace(string(v)), 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		u = n
	case bool:
		if v {
			u = 1
		}
	default:
		sv := reflect.ValueOf(src)
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i := sv.Int()
			if i < 0 {
				return fmt.Errorf("%d 超出 %s 的范围", i, dst.Type())
			}
			u = uint64(i)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u = sv.Uint()
		case reflect.Float32, reflect.Float64:
			f := sv.Float()
			if f != math.Trunc(f) || f < 0 || f > math.MaxUint64 {
				return fmt.Errorf("%v 不是非负整数", f)
			}
			u = uint64(f)
		default:
			return fmt.Errorf("不支持从 %T 转换到 %s", src, dst.Type())
		}
	}
	if dst.OverflowUint(u) {
		return fmt.Errorf("%d 超出 %s 的范围", u, dst.Type())
	}
	dst.SetUint(u)
	return nil
}

func assignFloat(dst reflect.Value, src any) error {
	var f float64
	switch v := src.(type) {
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), dst.Type().Bits())
		if err != nil {
			return err
		}
		f = n
	case []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), dst.Type().Bits())
		if err != nil {
			return err
		}
		f = n
	default:
		sv := reflect.ValueOf(src)
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(sv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(sv.Uint())
		case reflect.Float32, reflect.Float64:
			f = sv.Float()
		default:
			return fmt.Errorf("不支持从 %T 转换到 %s", src, dst.Type())
		}
	}
	if dst.OverflowFloat(f) {
		return fmt.Errorf("%v 超出 %s 的范围", f, dst.Type())
	}
	dst.SetFloat(f)
	return nil
}

func assignBool(dst reflect.Value, src any) error {
	switch v := src.(type) {
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case []byte:
		b, err := strconv.ParseBool(strings.TrimSpace(string(v)))
		if err != nil {
			return err
		}
		dst.SetBool(b)
	default:
		sv := reflect.ValueOf(src)
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetBool(sv.Int() != 0)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetBool(sv.Uint() != 0)
		case reflect.Float32, reflect.Float64:
			dst.SetBool(sv.Float() != 0)
		default:
			return fmt.Errorf("不支持从 %T 转换到 %s", src, dst.Type())
		}
	}
	return nil
}

func asTime(src any) (time.Time, error) {
	var s string
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}, fmt.Errorf("不支持从 %T 转换到 time.Time", src)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间 %q", s)
}
