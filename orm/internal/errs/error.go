package errs

import (
	"errors"
	"fmt"
)

var (
	ErrPointerOnly    = errors.New("orm: 只支持指向结构体的一级指针")
	ErrNoRows         = errors.New("orm: 没有数据")
	ErrInsertZeroRows = errors.New("orm: 插入0行数据")
	ErrNoPrimaryKey   = errors.New("orm: 模型没有主键")

	// ErrNoUpdatedColumns UPDATE 语句没有 SET 任何列
	ErrNoUpdatedColumns = errors.New("orm: 没有需要更新的列")

	// 配置错误, 直接失败, 不重试
	ErrUnsupportedDialect   = errors.New("orm: 不支持的数据库类型")
	ErrInvalidOrderClause   = errors.New("orm: 非法的排序字段")
	ErrUnsupportedProcedure = errors.New("orm: 当前数据库不支持存储过程")

	// 分页参数
	ErrInvalidPageSize  = errors.New("orm: 每页数量必须大于0")
	ErrInvalidPageIndex = errors.New("orm: 页码必须从1开始")
	ErrMissingTotal     = errors.New("orm: 分页查询没有返回总数")

	// 事务的使用姿势错误
	ErrTxAlreadyBegun = errors.New("orm: 事务已经开启")
	ErrNoActiveTx     = errors.New("orm: 没有开启的事务")
	ErrRepoClosed     = errors.New("orm: 仓储已经关闭")

	ErrNullValue = errors.New("orm: 不可为空的类型得到了 null")
)

func NewErrUnsupportedExpressionType(expr any) error {
	return fmt.Errorf("orm: 不支持的表达式 %v", expr)
}

func NewErrUnknownField(name string) error {
	return fmt.Errorf("orm: 未知字段 %s", name)
}

func NewErrUnknownColumn(name string) error {
	return fmt.Errorf("orm: 未知数据库列名 %s", name)
}

func NewErrIinvalidTagContent(pair string) error {
	return fmt.Errorf("orm: 非法标签值 %s", pair)
}

func NewErrUnsupportedAssignable(expr any) error {
	return fmt.Errorf("orm: 不支持的赋值表达式类型 %v", expr)
}

func NewErrUnknownMember(typ any, path string) error {
	return fmt.Errorf("orm: 类型 %v 上找不到成员 %s", typ, path)
}

func NewErrKeyCount(want, got int) error {
	return fmt.Errorf("orm: 主键有 %d 列, 但是传入了 %d 个值", want, got)
}

func NewErrInvalidIdentifier(name string) error {
	return fmt.Errorf("orm: 非法的标识符 %q", name)
}

func NewErrEvaluate(val any, kind any) error {
	return fmt.Errorf("orm: 无法把 %v(%T) 求值成 %v", val, val, kind)
}

func NewErrInvalidOrderClause(clause string) error {
	return fmt.Errorf("%w: %q", ErrInvalidOrderClause, clause)
}

func NewErrUnsupportedDialect(d any) error {
	return fmt.Errorf("%w: %v", ErrUnsupportedDialect, d)
}

func NewErrFailedToRollbackTx(bizErr error, rbErr error, panicked bool) error {
	if rbErr == nil {
		return bizErr
	}
	return fmt.Errorf("orm: 回滚事务失败, 业务错误 %w, 回滚错误 %s, 是否 panic: %t",
		bizErr, rbErr.Error(), panicked)
}

// ConvertError 列的值无法转换成字段的类型.
// 这个错误按行返回给调用者, 不会被吞掉, 也不会用默认值代替
type ConvertError struct {
	Column string
	Field  string
	Value  any
	Err    error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("orm: 列 %s 的值 %v(%T) 无法转换到字段 %s: %v",
		e.Column, e.Value, e.Value, e.Field, e.Err)
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

func NewErrConvert(column, field string, val any, err error) error {
	return &ConvertError{
		Column: column,
		Field:  field,
		Value:  val,
		Err:    err,
	}
}
