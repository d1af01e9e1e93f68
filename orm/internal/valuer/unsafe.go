package valuer

import (
	"reflect"
	"unsafe"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/model"
)

type unsafeValue struct {
	model *model.Model

	// 结构体的起始地址
	address unsafe.Pointer
}

// 确保类型变更 我们能得到通知
var _ Creator = NewUnsafeValue

func NewUnsafeValue(model *model.Model, val any) Value {
	return &unsafeValue{
		model: model,
		// UnsafePointer 是 golang 层面上的指针地址, 垃圾回收移动对象之后它依旧有效
		address: reflect.ValueOf(val).UnsafePointer(),
	}
}

func (u *unsafeValue) field(name string) (reflect.Value, error) {
	fd, ok := u.model.FieldMap[name]
	if !ok {
		return reflect.Value{}, errs.NewErrUnknownField(name)
	}
	// 字段地址 = 起始地址 + 偏移量
	fdAddress := unsafe.Add(u.address, fd.Offset)
	return reflect.NewAt(fd.Type, fdAddress).Elem(), nil
}

func (u *unsafeValue) Field(name string) (any, error) {
	fv, err := u.field(name)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

func (u *unsafeValue) SetField(name string, val any) error {
	fv, err := u.field(name)
	if err != nil {
		return err
	}
	return assign(fv, val)
}

func (u *unsafeValue) IsZero(name string) (bool, error) {
	fv, err := u.field(name)
	if err != nil {
		return false, err
	}
	return fv.IsZero(), nil
}
