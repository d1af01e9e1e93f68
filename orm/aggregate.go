package orm

import "github.com/startdusk/dbrepo/orm/internal/errs"

// Aggregate 聚合函数, 参数是实体的字段名, 构造的时候转换成当前数据库带引号的列名.
// 比如 MySQL 下 Count("ID").As("total") 是 COUNT(`id`) AS `total`
type Aggregate struct {
	fn       string
	arg      string
	alias    string
	distinct bool
}

func (a Aggregate) selectable() {}

// As 结果列的别名, 物化的时候按照别名匹配字段
func (a Aggregate) As(alias string) Aggregate {
	a.alias = alias
	return a
}

func (a Aggregate) Distinct() Aggregate {
	a.distinct = true
	return a
}

func Avg(col string) Aggregate {
	return Aggregate{fn: "AVG", arg: col}
}

func Sum(col string) Aggregate {
	return Aggregate{fn: "SUM", arg: col}
}

func Count(col string) Aggregate {
	return Aggregate{fn: "COUNT", arg: col}
}

func Max(col string) Aggregate {
	return Aggregate{fn: "MAX", arg: col}
}

func Min(col string) Aggregate {
	return Aggregate{fn: "MIN", arg: col}
}

func (b *builder) buildAggregate(a Aggregate) error {
	b.sb.WriteString(a.fn)
	b.sb.WriteByte('(')
	if a.distinct {
		b.sb.WriteString("DISTINCT ")
	}
	if err := b.buildColumn(a.arg); err != nil {
		return err
	}
	b.sb.WriteByte(')')
	if a.alias == "" {
		return nil
	}
	// 别名直接拼接到 SQL 里面
	if !isIdentifier(a.alias) {
		return errs.NewErrInvalidIdentifier(a.alias)
	}
	b.sb.WriteString(" AS ")
	b.quote(a.alias)
	return nil
}
