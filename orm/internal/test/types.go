// Package test 集成测试共用的实体, 仅限于内部使用
package test

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// SimpleStruct 每一种映射路径至少有一个字段:
// 基础类型, 指针, []byte, sql.NullXXX, decimal 和自定义的 Scanner/Valuer
type SimpleStruct struct {
	ID uint64

	Bool    bool
	BoolPtr *bool

	Int      int
	IntPtr   *int
	Int8     int8
	Int16Ptr *int16
	Int64    int64
	Uint32   uint32

	Float32    float32
	Float64Ptr *float64

	ByteArray []byte
	String    string
	Amount    decimal.Decimal

	NullStringPtr *sql.NullString
	NullInt64Ptr  *sql.NullInt64
	JsonColumn    *JsonColumn
}

// JsonColumn 以 JSON 的形式存储 User
type JsonColumn struct {
	Val   User
	Valid bool
}

type User struct {
	Name string
}

func (j *JsonColumn) Scan(src any) error {
	var bs []byte
	switch val := src.(type) {
	case nil:
		return nil
	case string:
		bs = []byte(val)
	case []byte:
		bs = val
	default:
		return fmt.Errorf("不合法类型 %T", src)
	}
	if len(bs) == 0 {
		return nil
	}
	if err := json.Unmarshal(bs, &j.Val); err != nil {
		return err
	}
	j.Valid = true
	return nil
}

func (j JsonColumn) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	return json.Marshal(j.Val)
}

func NewSimpleStruct(id uint64) *SimpleStruct {
	return &SimpleStruct{
		ID:            id,
		Bool:          true,
		BoolPtr:       ToPtr(false),
		Int:           12,
		IntPtr:        ToPtr(13),
		Int8:          -8,
		Int16Ptr:      ToPtr[int16](16),
		Int64:         64,
		Uint32:        32,
		Float32:       3.2,
		Float64Ptr:    ToPtr(-6.4),
		ByteArray:     []byte("hello"),
		String:        "world",
		Amount:        decimal.RequireFromString("12.50"),
		NullStringPtr: &sql.NullString{String: "null string", Valid: true},
		NullInt64Ptr:  &sql.NullInt64{Int64: 64, Valid: true},
		JsonColumn: &JsonColumn{
			Val:   User{Name: "Tom"},
			Valid: true,
		},
	}
}

func ToPtr[T any](t T) *T {
	return &t
}
