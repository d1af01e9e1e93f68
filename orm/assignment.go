package orm

// Assignable UPDATE 语句 SET 后面的部分
type Assignable interface {
	assign()
}

type Assignment struct {
	col string
	val any
}

func (a Assignment) assign() {}

// Column 作为赋值的时候, 值从实体里面取
func (c Column) assign() {}

// Assign col 使用 Go 字段名, val 可以是 eval.Expr
func Assign(col string, val any) Assignment {
	return Assignment{
		col: col,
		val: val,
	}
}
