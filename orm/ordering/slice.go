package ordering

import (
	"reflect"
	"slices"
)

// Slice 内存中的 Orderable 实现
type Slice[T any] struct {
	items []T
	keys  Spec
}

func From[T any](items []T) Slice[T] {
	return Slice[T]{items: items}
}

// OrderBy 会丢弃之前的排序键
func (s Slice[T]) OrderBy(key Key) Slice[T] {
	s.keys = Spec{key}
	return s
}

func (s Slice[T]) ThenBy(key Key) Slice[T] {
	s.keys = append(slices.Clip(s.keys), key)
	return s
}

// Sorted 返回排好序的新切片, 原切片不变. 相等的元素保持原来的顺序
func (s Slice[T]) Sorted() ([]T, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	accs := make([]Accessor, 0, len(s.keys))
	for _, key := range s.keys {
		acc, err := Resolve(typ, key.Path)
		if err != nil {
			return nil, err
		}
		accs = append(accs, acc)
	}
	res := slices.Clone(s.items)
	if len(accs) == 0 {
		return res, nil
	}
	slices.SortStableFunc(res, func(a, b T) int {
		av, bv := reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem()
		for i, acc := range accs {
			c := compare(acc.Value(av), acc.Value(bv))
			if c == 0 {
				continue
			}
			if s.keys[i].Direction == Descending {
				return -c
			}
			return c
		}
		return 0
	})
	return res, nil
}

// Sorted 按照 spec 对 items 排序
func Sorted[T any](items []T, spec Spec) ([]T, error) {
	return Apply(From(items), spec).Sorted()
}
