package orm

import (
	"context"
	"reflect"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/internal/valuer"
	"github.com/startdusk/dbrepo/orm/model"
)

// Insert 逐条插入, 多条数据的时候在同一个事务里面执行.
// 单列整数主键是零值的时候由数据库生成, 插入之后回填到实体
func Insert[T any](ctx context.Context, r *Repository, entities ...*T) (int64, error) {
	if len(entities) == 0 {
		return 0, errs.ErrInsertZeroRows
	}
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	var affected int64
	err = r.batch(ctx, len(entities), func(ctx context.Context) error {
		for _, entity := range entities {
			generated, err := autoKey(r.creator, m, entity)
			if err != nil {
				return err
			}
			res := NewInserter[T](r).Values(entity).Exec(ctx)
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			affected += n
			if generated != nil {
				// 有的驱动不支持 LastInsertId, 比如 PostgreSQL
				if id, err := res.LastInsertId(); err == nil {
					if err = r.creator(m, entity).SetField(generated.GoName, id); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	return affected, err
}

// Update 部分更新, 只更新不是零值并且不是主键的字段.
// 零值被当作没有传入, 需要把字段更新成零值的时候使用 UpdateColumns
func Update[T any](ctx context.Context, r *Repository, entities ...*T) (int64, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	if len(m.PrimaryKeys) == 0 {
		return 0, errs.ErrNoPrimaryKey
	}
	var affected int64
	err = r.batch(ctx, len(entities), func(ctx context.Context) error {
		for _, entity := range entities {
			assigns, err := modified(r.creator, m, entity)
			if err != nil {
				return err
			}
			if len(assigns) == 0 {
				continue
			}
			n, err := updateByKey(ctx, r, m, entity, assigns)
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	return affected, err
}

// UpdateColumns 按主键更新指定的列, 零值也会写入
func UpdateColumns[T any](ctx context.Context, r *Repository, entity *T, cols ...string) (int64, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	assigns := make([]Assignable, 0, len(cols))
	for _, col := range cols {
		assigns = append(assigns, C(col))
	}
	return updateByKey(ctx, r, m, entity, assigns)
}

// UpdateWhere 找到满足条件的数据, 把主键复制到 entity 的副本上, 然后逐条部分更新
func UpdateWhere[T any](ctx context.Context, r *Repository, entity *T, ps ...Predicate) (int64, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	var affected int64
	err = r.inTrans(ctx, func(ctx context.Context) error {
		matches, err := FindList[T](ctx, r, Where(ps...))
		if err != nil {
			return err
		}
		updates := make([]*T, 0, len(matches))
		for _, match := range matches {
			cp := new(T)
			*cp = *entity
			src, dst := r.creator(m, match), r.creator(m, cp)
			for _, pk := range m.PrimaryKeys {
				key, err := src.Field(pk.GoName)
				if err != nil {
					return err
				}
				if err = dst.SetField(pk.GoName, key); err != nil {
					return err
				}
			}
			updates = append(updates, cp)
		}
		affected, err = Update[T](ctx, r, updates...)
		return err
	})
	return affected, err
}

// Delete 按照实体的主键删除
func Delete[T any](ctx context.Context, r *Repository, entities ...*T) (int64, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	var affected int64
	err = r.batch(ctx, len(entities), func(ctx context.Context) error {
		for _, entity := range entities {
			ps, err := entityKeys(r.creator, m, entity)
			if err != nil {
				return err
			}
			n, err := NewDeleter[T](r).Where(ps...).Exec(ctx).RowsAffected()
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	return affected, err
}

// DeleteWhere 先把满足条件的数据查出来, 再按照主键逐条删除.
// 匹配的数据会全部加载到内存里面
func DeleteWhere[T any](ctx context.Context, r *Repository, ps ...Predicate) (int64, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	if len(m.PrimaryKeys) == 0 {
		return 0, errs.ErrNoPrimaryKey
	}
	var affected int64
	err = r.inTrans(ctx, func(ctx context.Context) error {
		matches, err := FindList[T](ctx, r, Where(ps...))
		if err != nil {
			return err
		}
		affected, err = Delete[T](ctx, r, matches...)
		return err
	})
	return affected, err
}

// DeleteByKey 按照主键删除, 联合主键按照声明的顺序传值
func DeleteByKey[T any](ctx context.Context, r *Repository, keys ...any) (int64, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return 0, err
	}
	ps, err := keyPredicates(m, keys)
	if err != nil {
		return 0, err
	}
	return NewDeleter[T](r).Where(ps...).Exec(ctx).RowsAffected()
}

// DeleteAll 删除整张表的数据
func DeleteAll[T any](ctx context.Context, r *Repository) (int64, error) {
	return NewDeleter[T](r).Exec(ctx).RowsAffected()
}

// batch 多条语句的时候开启隐式事务
func (r *Repository) batch(ctx context.Context, n int, fn func(ctx context.Context) error) error {
	if n <= 1 {
		return fn(ctx)
	}
	return r.inTrans(ctx, fn)
}

func updateByKey[T any](ctx context.Context, r *Repository, m *model.Model, entity *T, assigns []Assignable) (int64, error) {
	ps, err := entityKeys(r.creator, m, entity)
	if err != nil {
		return 0, err
	}
	return NewUpdater[T](r).Update(entity).Set(assigns...).Where(ps...).Exec(ctx).RowsAffected()
}

// modified 不是零值并且不是主键的字段
func modified(creator valuer.Creator, m *model.Model, entity any) ([]Assignable, error) {
	val := creator(m, entity)
	assigns := make([]Assignable, 0, len(m.Fields))
	for _, fd := range m.Fields {
		if fd.PrimaryKey {
			continue
		}
		zero, err := val.IsZero(fd.GoName)
		if err != nil {
			return nil, err
		}
		if !zero {
			assigns = append(assigns, C(fd.GoName))
		}
	}
	return assigns, nil
}

func entityKeys(creator valuer.Creator, m *model.Model, entity any) ([]Predicate, error) {
	if len(m.PrimaryKeys) == 0 {
		return nil, errs.ErrNoPrimaryKey
	}
	val := creator(m, entity)
	keys := make([]any, 0, len(m.PrimaryKeys))
	for _, pk := range m.PrimaryKeys {
		key, err := val.Field(pk.GoName)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keyPredicates(m, keys)
}

// autoKey 单列整数主键, 并且是零值
func autoKey(creator valuer.Creator, m *model.Model, entity any) (*model.Field, error) {
	if len(m.PrimaryKeys) != 1 {
		return nil, nil
	}
	pk := m.PrimaryKeys[0]
	switch pk.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, nil
	}
	zero, err := creator(m, entity).IsZero(pk.GoName)
	if err != nil || !zero {
		return nil, err
	}
	return pk, nil
}
