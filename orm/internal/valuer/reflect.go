package valuer

import (
	"reflect"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/model"
)

type reflectValue struct {
	model *model.Model

	// val 是结构体指针指向的数据
	val reflect.Value
}

// 确保类型变更 我们能得到通知
var _ Creator = NewReflectValue

func NewReflectValue(model *model.Model, val any) Value {
	return &reflectValue{
		model: model,
		val:   reflect.ValueOf(val).Elem(),
	}
}

func (r *reflectValue) field(name string) (reflect.Value, error) {
	fd, ok := r.model.FieldMap[name]
	if !ok {
		return reflect.Value{}, errs.NewErrUnknownField(name)
	}
	return r.val.FieldByIndex(fd.Index), nil
}

func (r *reflectValue) Field(name string) (any, error) {
	fv, err := r.field(name)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

func (r *reflectValue) SetField(name string, val any) error {
	fv, err := r.field(name)
	if err != nil {
		return err
	}
	return assign(fv, val)
}

func (r *reflectValue) IsZero(name string) (bool, error) {
	fv, err := r.field(name)
	if err != nil {
		return false, err
	}
	return fv.IsZero(), nil
}

// assign 类型不一致的时候尝试做一次转换, 例如 int64 的主键回填到 int 字段
func assign(fv reflect.Value, val any) error {
	if val == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(fv.Type()):
		fv.Set(rv)
	case rv.Type().ConvertibleTo(fv.Type()):
		fv.Set(rv.Convert(fv.Type()))
	default:
		return errs.NewErrUnsupportedAssignable(val)
	}
	return nil
}
