package valuer

import (
	"github.com/startdusk/dbrepo/orm/model"
)

// Value 是对结构体实例的内部抽象
type Value interface {
	// Field 返回字段对应的值
	Field(name string) (any, error)
	// SetField 给字段设置新值, 用于回填主键之类的场景
	SetField(name string, val any) error
	// IsZero 字段是否是类型的零值(nil, 0, "", 空结构体)
	IsZero(name string) (bool, error)
}

type Creator func(model *model.Model, entity any) Value
