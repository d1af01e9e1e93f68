package orm

func (c Column) selectable() {}

func (c Column) expr() {}

// Column 使用 Go 字段名, 构造 SQL 的时候才会转换成列名
type Column struct {
	name string
}

func (c Column) binary(o op, arg any) Predicate {
	return Predicate{
		left:  c,
		op:    o,
		right: value{val: arg},
	}
}

func (c Column) Eq(arg any) Predicate {
	return c.binary(opEq, arg)
}

func (c Column) Neq(arg any) Predicate {
	return c.binary(opNeq, arg)
}

func (c Column) Gt(arg any) Predicate {
	return c.binary(opGt, arg)
}

func (c Column) Ge(arg any) Predicate {
	return c.binary(opGe, arg)
}

func (c Column) Lt(arg any) Predicate {
	return c.binary(opLt, arg)
}

func (c Column) Le(arg any) Predicate {
	return c.binary(opLe, arg)
}

func (c Column) Like(pattern any) Predicate {
	return c.binary(opLike, pattern)
}

// In 参数为空的时候不会匹配任何数据
func (c Column) In(args ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opIn,
		right: values{vals: args},
	}
}

func (c Column) IsNull() Predicate {
	return Predicate{
		left: c,
		op:   opIsNull,
	}
}

func (c Column) IsNotNull() Predicate {
	return Predicate{
		left: c,
		op:   opIsNotNull,
	}
}
