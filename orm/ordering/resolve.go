package ordering

import (
	"reflect"
	"strings"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Accessor 已经解析好的成员访问链
type Accessor struct {
	typ   reflect.Type
	path  string
	chain [][]int
}

// Resolve 解析 path 对应的成员访问链, 路径上的每一段都必须存在.
// 成员名先精确匹配, 再忽略大小写匹配
func Resolve(typ reflect.Type, path string) (Accessor, error) {
	acc := Accessor{typ: typ, path: path}
	cur := typ
	for _, seg := range strings.Split(path, ".") {
		for cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct || seg == "" {
			return Accessor{}, errs.NewErrUnknownMember(typ, path)
		}
		fd, ok := cur.FieldByName(seg)
		if !ok {
			fd, ok = cur.FieldByNameFunc(func(name string) bool {
				return strings.EqualFold(name, seg)
			})
		}
		if !ok || !fd.IsExported() {
			return Accessor{}, errs.NewErrUnknownMember(typ, path)
		}
		acc.chain = append(acc.chain, fd.Index)
		cur = fd.Type
	}
	return acc, nil
}

// Value 路径上遇到 nil 指针的时候返回无效的 reflect.Value
func (a Accessor) Value(v reflect.Value) reflect.Value {
	for _, index := range a.chain {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		var err error
		v, err = v.FieldByIndexErr(index)
		if err != nil {
			// 嵌入的结构体指针是 nil
			return reflect.Value{}
		}
	}
	return v
}

func (a Accessor) Path() string {
	return a.path
}
