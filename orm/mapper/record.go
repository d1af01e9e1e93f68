package mapper

import (
	"strings"
)

// Record 动态记录, 等价于一行数据.
// 同一个结果集里面的 Record 共享列名和索引
type Record struct {
	cols   *columnIndex
	values []any
}

type columnIndex struct {
	names []string
	// 小写列名 -> 第一次出现的位置
	lower map[string]int
}

func newColumnIndex(names []string) *columnIndex {
	idx := &columnIndex{
		names: names,
		lower: make(map[string]int, len(names)),
	}
	for i, name := range names {
		key := strings.ToLower(name)
		if _, ok := idx.lower[key]; !ok {
			idx.lower[key] = i
		}
	}
	return idx
}

func NewRecord(columns []string, values []any) Record {
	return Record{
		cols:   newColumnIndex(columns),
		values: values,
	}
}

// Get 忽略大小写按列名取值
func (r Record) Get(name string) (any, bool) {
	if r.cols == nil {
		return nil, false
	}
	i, ok := r.cols.lower[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

func (r Record) Value(i int) any {
	return r.values[i]
}

func (r Record) Columns() []string {
	if r.cols == nil {
		return nil
	}
	return r.cols.names
}

func (r Record) Values() []any {
	return r.values
}

func (r Record) Len() int {
	return len(r.values)
}

// Map 重名列以后出现的为准, 与 map 的语义一致
func (r Record) Map() map[string]any {
	res := make(map[string]any, len(r.values))
	for i, name := range r.Columns() {
		res[name] = r.values[i]
	}
	return res
}
