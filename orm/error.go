package orm

import (
	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// 通过桥接的方式将内部错误导出外部
// 当然这种方式也有取舍, 就是重构的时候, 如果调用这个变量的文件被移动到另外一个包了, 那么这里就得跟着移动
var (
	ErrNoRows               = errs.ErrNoRows
	ErrNoPrimaryKey         = errs.ErrNoPrimaryKey
	ErrInsertZeroRows       = errs.ErrInsertZeroRows
	ErrNoUpdatedColumns     = errs.ErrNoUpdatedColumns
	ErrUnsupportedDialect   = errs.ErrUnsupportedDialect
	ErrInvalidOrderClause   = errs.ErrInvalidOrderClause
	ErrUnsupportedProcedure = errs.ErrUnsupportedProcedure
	ErrInvalidPageSize      = errs.ErrInvalidPageSize
	ErrInvalidPageIndex     = errs.ErrInvalidPageIndex
	ErrMissingTotal         = errs.ErrMissingTotal
	ErrTxAlreadyBegun       = errs.ErrTxAlreadyBegun
	ErrNoActiveTx           = errs.ErrNoActiveTx
	ErrRepoClosed           = errs.ErrRepoClosed
	ErrNullValue            = errs.ErrNullValue
)

// ConvertError 列的值无法转换成字段的类型
type ConvertError = errs.ConvertError
