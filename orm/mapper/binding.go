package mapper

import (
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/startdusk/dbrepo/orm/model"
)

// bindingKey 一个绑定表只对某个类型的某一组列有效
type bindingKey struct {
	typ  reflect.Type
	cols string
}

// binding 列序号 -> 字段, 没有匹配上的列是 nil
type binding struct {
	fields []*model.Field
}

type bindingCache struct {
	registry model.Registry
	cache    *lru.Cache[bindingKey, *binding]
}

func newBindingCache(r model.Registry, size int) *bindingCache {
	// size 已经在 New 里面保证大于 0, lru.New 只会在 size <= 0 的时候返回 error
	cache, _ := lru.New[bindingKey, *binding](size)
	return &bindingCache{
		registry: r,
		cache:    cache,
	}
}

func (c *bindingCache) get(typ reflect.Type, cols []string) (*binding, error) {
	key := bindingKey{typ: typ, cols: strings.Join(cols, "\x00")}
	if b, ok := c.cache.Get(key); ok {
		return b, nil
	}
	m, err := c.registry.Get(reflect.New(typ).Interface())
	if err != nil {
		return nil, err
	}
	b := &binding{fields: make([]*model.Field, len(cols))}
	for i, col := range cols {
		// 多余的列直接丢掉
		if fd, ok := m.FieldByColumn(col); ok {
			b.fields[i] = fd
		}
	}
	c.cache.Add(key, b)
	return b, nil
}
