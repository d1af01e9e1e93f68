package orm

type op string

const (
	opEq        op = "="
	opNeq       op = "<>"
	opLt        op = "<"
	opLe        op = "<="
	opGt        op = ">"
	opGe        op = ">="
	opLike      op = "LIKE"
	opIn        op = "IN"
	opIsNull    op = "IS NULL"
	opIsNotNull op = "IS NOT NULL"
	opNot       op = "NOT"
	opAnd       op = "AND"
	opOr        op = "OR"
)

func (o op) String() string {
	return string(o)
}

type Predicate struct {
	left  Expression
	op    op
	right Expression
}

func (p Predicate) expr() {}

func C(name string) Column {
	return Column{name: name}
}

func Not(p Predicate) Predicate {
	return Predicate{
		op:    opNot,
		right: p,
	}
}

// C("id").Eq(12).And(C("name").Eq("Tom")) => id = 12 AND name = "Tom"
func (left Predicate) And(right Predicate) Predicate {
	return Predicate{
		left:  left,
		op:    opAnd,
		right: right,
	}
}

// C("id").Eq(12).Or(C("name").Eq("Tom")) => id = 12 OR name = "Tom"
func (left Predicate) Or(right Predicate) Predicate {
	return Predicate{
		left:  left,
		op:    opOr,
		right: right,
	}
}

// value 代表参数, 如果是 eval.Expr 会在构造 SQL 的时候先求值
type value struct {
	val any
}

func (v value) expr() {}

// values IN 的参数列表
type values struct {
	vals []any
}

func (v values) expr() {}
