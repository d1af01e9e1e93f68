// Package eval 把调用方的表达式求值成一个带类型的参数值, 用于构造 SQL 的参数
package eval

import (
	"reflect"
	"strings"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Expr 表达式节点的标记接口
type Expr interface {
	expr()
}

// Constant 字面量, 求值的时候直接返回
type Constant struct {
	Value any
}

// Convert 类型转换节点, 求值的时候直接对操作数求值
type Convert struct {
	Operand Expr
}

// Member 从 Target 上按照 . 分隔的路径读取成员
type Member struct {
	Target any
	Path   string
}

// Func 已经编译好的闭包
type Func func() any

func (Constant) expr() {}
func (Convert) expr()  {}
func (Member) expr()   {}
func (Func) expr()     {}

func Const(val any) Constant {
	return Constant{Value: val}
}

func Field(target any, path string) Member {
	return Member{Target: target, Path: path}
}

// invoke 执行 Member 或者 Func, 返回值和静态类型
func invoke(e Expr) (any, reflect.Type, error) {
	switch ex := e.(type) {
	case Member:
		return ex.resolve()
	case Func:
		val := ex()
		return val, reflect.TypeOf(val), nil
	}
	return nil, nil, errs.NewErrUnsupportedExpressionType(e)
}

func (m Member) resolve() (any, reflect.Type, error) {
	v := reflect.ValueOf(m.Target)
	if !v.IsValid() {
		return nil, nil, errs.NewErrUnknownMember(nil, m.Path)
	}
	typ := v.Type()
	for _, seg := range strings.Split(m.Path, ".") {
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
			if v.IsValid() {
				if v.IsNil() {
					v = reflect.Value{}
				} else {
					v = v.Elem()
				}
			}
		}
		if typ.Kind() != reflect.Struct {
			return nil, nil, errs.NewErrUnknownMember(reflect.TypeOf(m.Target), m.Path)
		}
		fd, ok := typ.FieldByName(seg)
		if !ok || !fd.IsExported() {
			return nil, nil, errs.NewErrUnknownMember(reflect.TypeOf(m.Target), m.Path)
		}
		if v.IsValid() {
			fv, err := v.FieldByIndexErr(fd.Index)
			if err != nil {
				v = reflect.Value{}
			} else {
				v = fv
			}
		}
		typ = fd.Type
	}
	if !v.IsValid() {
		// 路径上有 nil 指针, 结果就是 null
		return nil, typ, nil
	}
	return v.Interface(), typ, nil
}
