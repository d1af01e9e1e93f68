// Package ordering 根据运行时的属性路径构造排序条件, 支持多个排序键.
// 同一份排序条件既可以交给 SQL 构造器, 也可以直接对内存中的切片排序
package ordering

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// Key 一个排序键, Path 是用 . 分隔的成员路径, 例如 Customer.Name
type Key struct {
	Path      string
	Direction Direction
}

func Asc(path string) Key {
	return Key{Path: path, Direction: Ascending}
}

func Desc(path string) Key {
	return Key{Path: path, Direction: Descending}
}

// Spec 有序的排序键, 第一个是主排序键
type Spec []Key

// Fields 多个排序键的路径
type Fields []string

// Tuple 一次性声明多个排序键
func Tuple(paths ...string) Fields {
	return Fields(paths)
}

// NewSpec 第 i 个路径使用 dirs[i], 方向不够的时候使用升序
func NewSpec(fields Fields, dirs ...Direction) Spec {
	spec := make(Spec, 0, len(fields))
	for i, path := range fields {
		dir := Ascending
		if i < len(dirs) {
			dir = dirs[i]
		}
		spec = append(spec, Key{Path: path, Direction: dir})
	}
	return spec
}

// Orderable 可以排序的查询, 主排序键走 OrderBy, 剩下的走 ThenBy
type Orderable[Q any] interface {
	OrderBy(key Key) Q
	ThenBy(key Key) Q
}

// Apply 空的排序条件原样返回 q
func Apply[Q Orderable[Q]](q Q, spec Spec) Q {
	for i, key := range spec {
		if i == 0 {
			q = q.OrderBy(key)
			continue
		}
		q = q.ThenBy(key)
	}
	return q
}
