package mapper

import (
	"database/sql"
	"reflect"
)

// Column 结果集中的一列, 在结果集的生命周期内不可变
type Column struct {
	Name         string
	DatabaseType string
	ScanType     reflect.Type
	Nullable     bool
	Ordinal      int
}

// Table 对应一次查询的完整结果
type Table struct {
	Columns []Column
	Rows    []Record
}

func columnsOf(rows *sql.Rows) ([]Column, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]Column, 0, len(types))
	for i, ct := range types {
		nullable, _ := ct.Nullable()
		cols = append(cols, Column{
			Name:         ct.Name(),
			DatabaseType: ct.DatabaseTypeName(),
			ScanType:     ct.ScanType(),
			Nullable:     nullable,
			Ordinal:      i,
		})
	}
	return cols, nil
}
