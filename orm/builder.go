package orm

import (
	"strings"

	"github.com/startdusk/dbrepo/orm/eval"
	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/model"
)

type builder struct {
	core
	sb    strings.Builder
	args  []any
	model *model.Model
}

func (b *builder) quote(name string) {
	b.dialect.quote(&b.sb, name)
}

// param 写入占位符并记录参数, eval.Expr 先求值
func (b *builder) param(val any) error {
	if e, ok := val.(eval.Expr); ok {
		v, err := eval.Value(e)
		if err != nil {
			return err
		}
		val = v
	}
	b.addArgs(val)
	b.dialect.placeholder(&b.sb, len(b.args))
	return nil
}

func (b *builder) addArgs(args ...any) {
	if len(args) == 0 {
		return
	}
	if b.args == nil {
		// 很少有查询能够超过8个参数
		// INSERT除外
		b.args = make([]any, 0, 8)
	}
	b.args = append(b.args, args...)
}

func (b *builder) field(name string) (*model.Field, error) {
	if fd, ok := b.model.FieldMap[name]; ok {
		return fd, nil
	}
	if fd, ok := b.model.ColumnMap[name]; ok {
		return fd, nil
	}
	return nil, errs.NewErrUnknownField(name)
}

// fieldByPath 排序路径, 前面的每一段只能是匿名嵌入的结构体
func (b *builder) fieldByPath(path string) (*model.Field, error) {
	segs := strings.Split(path, ".")
	name := segs[len(segs)-1]
	fd, err := b.field(name)
	if err != nil {
		var ok bool
		if fd, ok = b.model.FieldByColumn(name); !ok {
			return nil, errs.NewErrUnknownField(path)
		}
	}
	if len(segs) > 1 && len(fd.Index) != len(segs) {
		return nil, errs.NewErrUnknownField(path)
	}
	return fd, nil
}

// buildColumn 构造列
func (b *builder) buildColumn(name string) error {
	fd, err := b.field(name)
	if err != nil {
		return err
	}
	b.quote(fd.ColName)
	return nil
}

func (b *builder) buildTable() {
	b.quote(b.model.TableName)
}

// buildWhere 多个条件之间用 AND 连接
func (b *builder) buildWhere(ps []Predicate) error {
	if len(ps) == 0 {
		return nil
	}
	b.sb.WriteString(" WHERE ")
	p := ps[0]
	for i := 1; i < len(ps); i++ {
		p = p.And(ps[i])
	}
	return b.buildExpression(p)
}

func (b *builder) buildExpression(expr Expression) error {
	switch exp := expr.(type) {
	case Predicate: // 代表一个查询条件
		// 注意: 生成的SQL中, 处理加空格, 加标点符号的问题会让代码很难看, 但这是必须的
		_, lok := exp.left.(Predicate)
		if lok {
			b.sb.WriteByte('(')
		}
		if err := b.buildExpression(exp.left); err != nil {
			return err
		}
		if lok {
			b.sb.WriteByte(')')
		}

		if exp.op != "" {
			if exp.left != nil {
				b.sb.WriteByte(' ')
			}
			b.sb.WriteString(exp.op.String())
		}
		if exp.right == nil {
			return nil
		}
		b.sb.WriteByte(' ')

		_, rok := exp.right.(Predicate)
		if rok {
			b.sb.WriteByte('(')
		}
		if err := b.buildExpression(exp.right); err != nil {
			return err
		}
		if rok {
			b.sb.WriteByte(')')
		}
	case Column: // 代表列名, 直接拼接列名
		return b.buildColumn(exp.name)
	case RawExpr:
		b.sb.WriteByte('(')
		b.sb.WriteString(exp.raw)
		b.addArgs(exp.args...)
		b.sb.WriteByte(')')
	case value: // 代表参数, 加入参数列表
		return b.param(exp.val)
	case values:
		b.sb.WriteByte('(')
		if len(exp.vals) == 0 {
			b.sb.WriteString("NULL")
		}
		for i, val := range exp.vals {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			if err := b.param(val); err != nil {
				return err
			}
		}
		b.sb.WriteByte(')')
	case nil:
		return nil
	default:
		return errs.NewErrUnsupportedExpressionType(expr)
	}
	return nil
}
