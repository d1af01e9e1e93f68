package eval

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	City string
}

type User struct {
	Name     string
	Age      int16
	Score    *int32
	Nickname sql.NullString
	Balance  decimal.Decimal
	Address  *Address
}

func Test_TypeOf(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want Type
	}{
		{typ: reflect.TypeOf(""), want: Type{Kind: String}},
		{typ: reflect.TypeOf(int16(0)), want: Type{Kind: Int16}},
		{typ: reflect.TypeOf(new(int32)), want: Type{Kind: Int32, Nullable: true}},
		{typ: reflect.TypeOf(int64(0)), want: Type{Kind: Int64}},
		{typ: reflect.TypeOf(uint8(0)), want: Type{Kind: Byte}},
		{typ: reflect.TypeOf(float32(0)), want: Type{Kind: Float32}},
		{typ: reflect.TypeOf(time.Time{}), want: Type{Kind: Time}},
		{typ: reflect.TypeOf(&time.Time{}), want: Type{Kind: Time, Nullable: true}},
		{typ: reflect.TypeOf(decimal.Decimal{}), want: Type{Kind: Decimal}},
		{typ: reflect.TypeOf(decimal.NullDecimal{}), want: Type{Kind: Decimal, Nullable: true}},
		{typ: reflect.TypeOf(sql.NullString{}), want: Type{Kind: String, Nullable: true}},
		{typ: reflect.TypeOf(sql.NullBool{}), want: Type{Kind: Bool, Nullable: true}},
		{typ: reflect.TypeOf(0), want: Type{Kind: Object}},
		{typ: reflect.TypeOf(User{}), want: Type{Kind: Object}},
		{typ: nil, want: Type{Kind: Object, Nullable: true}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TypeOf(c.typ), "%v", c.typ)
	}
}

func Test_Evaluate(t *testing.T) {
	score := int32(99)
	u := &User{
		Name:     "Tom",
		Age:      18,
		Score:    &score,
		Nickname: sql.NullString{String: "tt", Valid: true},
		Balance:  decimal.RequireFromString("10.25"),
		Address:  &Address{City: "Shenzhen"},
	}
	cases := []struct {
		name    string
		expr    Expr
		typ     Type
		want    any
		wantErr error
	}{
		{
			name: "constant",
			expr: Const(int64(1)),
			typ:  Type{Kind: Int16},
			want: int64(1),
		},
		{
			name: "convert",
			expr: Convert{Operand: Field(u, "Age")},
			typ:  Type{Kind: Int64},
			want: int64(18),
		},
		{
			name: "int16 stays int16",
			expr: Field(u, "Age"),
			typ:  Type{Kind: Int16},
			want: int16(18),
		},
		{
			name: "nullable int32",
			expr: Field(u, "Score"),
			typ:  Type{Kind: Int32, Nullable: true},
			want: &score,
		},
		{
			name: "null string",
			expr: Field(u, "Nickname"),
			typ:  Type{Kind: String, Nullable: true},
			want: func() *string { s := "tt"; return &s }(),
		},
		{
			name: "nested member",
			expr: Field(u, "Address.City"),
			typ:  Type{Kind: String},
			want: "Shenzhen",
		},
		{
			name: "decimal",
			expr: Field(u, "Balance"),
			typ:  Type{Kind: Decimal},
			want: decimal.RequireFromString("10.25"),
		},
		{
			name: "func",
			expr: Func(func() any { return 65 }),
			typ:  Type{Kind: Char},
			want: 'A',
		},
		{
			name: "func byte",
			expr: Func(func() any { return 255 }),
			typ:  Type{Kind: Byte},
			want: uint8(255),
		},
		{
			name:    "byte overflow",
			expr:    Func(func() any { return 256 }),
			typ:     Type{Kind: Byte},
			wantErr: errs.NewErrEvaluate(256, Byte),
		},
		{
			name: "float32",
			expr: Func(func() any { return 1.5 }),
			typ:  Type{Kind: Float32},
			want: float32(1.5),
		},
		{
			name: "object",
			expr: Func(func() any { return []int{1} }),
			typ:  Type{Kind: Object},
			want: []int{1},
		},
		{
			name:    "null for strict",
			expr:    Func(func() any { return nil }),
			typ:     Type{Kind: Bool},
			wantErr: errs.ErrNullValue,
		},
		{
			name:    "unknown member",
			expr:    Field(u, "Age.Value"),
			typ:     Type{Kind: Int16},
			wantErr: errs.NewErrUnknownMember(reflect.TypeOf(u), "Age.Value"),
		},
		{
			name:    "unsupported",
			expr:    nil,
			typ:     Type{Kind: Int16},
			wantErr: errs.NewErrUnsupportedExpressionType(nil),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Evaluate(c.expr, c.typ)
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func Test_EvaluateNullable(t *testing.T) {
	u := &User{}
	got, err := Evaluate(Field(u, "Nickname"), Type{Kind: String, Nullable: true})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.IsType(t, (*string)(nil), got)

	got, err = Evaluate(Field(u, "Address.City"), Type{Kind: String, Nullable: true})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_Value(t *testing.T) {
	u := User{Name: "Tom", Age: 20}
	got, err := Value(Field(u, "Age"))
	require.NoError(t, err)
	assert.Equal(t, int16(20), got)

	got, err = Value(Field(&u, "Score"))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Value(Func(func() any { return "x" }))
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}
