package orm

import (
	"context"
	"errors"
	"fmt"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/internal/taskpool"
	"github.com/startdusk/dbrepo/orm/mapper"
	"github.com/startdusk/dbrepo/orm/paging"
)

// Future 异步操作的结果.
// 同一个仓储的异步操作由一个 goroutine 按照提交的顺序执行, 所以它们在连接上的顺序和调用顺序一致
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Await 等待结果, ctx 过期只是不再等待, 操作本身还会执行完
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var t T
		return t, ctx.Err()
	}
}

// Done 操作结束之后关闭
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// submit 不要在 fn 里面等待同一个仓储的其它 Future
func submit[T any](ctx context.Context, r *Repository, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	err := r.worker.Submit(ctx, func() {
		defer func() {
			if p := recover(); p != nil {
				f.err = fmt.Errorf("orm: 异步操作 panic: %v", p)
			}
			close(f.done)
		}()
		f.val, f.err = fn(ctx)
	})
	if err != nil {
		if errors.Is(err, taskpool.ErrClosed) {
			err = errs.ErrRepoClosed
		}
		f.err = err
		close(f.done)
	}
	return f
}

// BeginTransAsync 排在前面的异步任务执行完之后才会开启事务,
// 所以它们不会被卷进这个事务里面
func (r *Repository) BeginTransAsync(ctx context.Context) *Future[struct{}] {
	return submit(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.BeginTrans(ctx)
	})
}

func (r *Repository) CommitAsync(ctx context.Context) *Future[struct{}] {
	return submit(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.Commit()
	})
}

func (r *Repository) RollbackAsync(ctx context.Context) *Future[struct{}] {
	return submit(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.Rollback()
	})
}

// DoTransAsync fn 在工作 goroutine 上执行, 里面只能使用同步的方法
func (r *Repository) DoTransAsync(ctx context.Context, fn func(ctx context.Context) error) *Future[struct{}] {
	return submit(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.DoTrans(ctx, fn)
	})
}

func (r *Repository) ExecuteBySqlAsync(ctx context.Context, query string, args ...any) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return r.ExecuteBySql(ctx, query, args...)
	})
}

func (r *Repository) ExecuteByProcAsync(ctx context.Context, name string, args ...any) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return r.ExecuteByProc(ctx, name, args...)
	})
}

func (r *Repository) FindObjectAsync(ctx context.Context, query string, args ...any) *Future[any] {
	return submit(ctx, r, func(ctx context.Context) (any, error) {
		return r.FindObject(ctx, query, args...)
	})
}

func (r *Repository) FindTableAsync(ctx context.Context, query string, args ...any) *Future[*mapper.Table] {
	return submit(ctx, r, func(ctx context.Context) (*mapper.Table, error) {
		return r.FindTable(ctx, query, args...)
	})
}

func (r *Repository) FindTablePageAsync(ctx context.Context, req paging.Request) *Future[*paging.Result[mapper.Record]] {
	return submit(ctx, r, func(ctx context.Context) (*paging.Result[mapper.Record], error) {
		return r.FindTablePage(ctx, req)
	})
}

func (r *Repository) FindTablePageByWithAsync(ctx context.Context, req paging.Request) *Future[*paging.Result[mapper.Record]] {
	return submit(ctx, r, func(ctx context.Context) (*paging.Result[mapper.Record], error) {
		return r.FindTablePageByWith(ctx, req)
	})
}

func FindByProcAsync[T any](ctx context.Context, r *Repository, name string, args ...any) *Future[[]T] {
	return submit(ctx, r, func(ctx context.Context) ([]T, error) {
		return FindByProc[T](ctx, r, name, args...)
	})
}

func FindListBySqlAsync[T any](ctx context.Context, r *Repository, query string, args ...any) *Future[[]T] {
	return submit(ctx, r, func(ctx context.Context) ([]T, error) {
		return FindListBySql[T](ctx, r, query, args...)
	})
}

func FindEntityBySqlAsync[T any](ctx context.Context, r *Repository, query string, args ...any) *Future[*T] {
	return submit(ctx, r, func(ctx context.Context) (*T, error) {
		return FindEntityBySql[T](ctx, r, query, args...)
	})
}

func FindMultipleAsync[T any](ctx context.Context, r *Repository, query string, args ...any) *Future[[][]T] {
	return submit(ctx, r, func(ctx context.Context) ([][]T, error) {
		return FindMultiple[T](ctx, r, query, args...)
	})
}

func FindEntityAsync[T any](ctx context.Context, r *Repository, keys ...any) *Future[*T] {
	return submit(ctx, r, func(ctx context.Context) (*T, error) {
		return FindEntity[T](ctx, r, keys...)
	})
}

func FindEntityWhereAsync[T any](ctx context.Context, r *Repository, ps ...Predicate) *Future[*T] {
	return submit(ctx, r, func(ctx context.Context) (*T, error) {
		return FindEntityWhere[T](ctx, r, ps...)
	})
}

func FindListAsync[T any](ctx context.Context, r *Repository, opts ...ListOption) *Future[[]*T] {
	return submit(ctx, r, func(ctx context.Context) ([]*T, error) {
		return FindList[T](ctx, r, opts...)
	})
}

func FindPageAsync[T any](ctx context.Context, r *Repository, page Page, ps ...Predicate) *Future[*paging.Result[*T]] {
	return submit(ctx, r, func(ctx context.Context) (*paging.Result[*T], error) {
		return FindPage[T](ctx, r, page, ps...)
	})
}

func FindPageBySqlAsync[T any](ctx context.Context, r *Repository, req paging.Request) *Future[*paging.Result[T]] {
	return submit(ctx, r, func(ctx context.Context) (*paging.Result[T], error) {
		return FindPageBySql[T](ctx, r, req)
	})
}

func FindPageByWithAsync[T any](ctx context.Context, r *Repository, req paging.Request) *Future[*paging.Result[T]] {
	return submit(ctx, r, func(ctx context.Context) (*paging.Result[T], error) {
		return FindPageByWith[T](ctx, r, req)
	})
}

func InsertAsync[T any](ctx context.Context, r *Repository, entities ...*T) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return Insert[T](ctx, r, entities...)
	})
}

func UpdateAsync[T any](ctx context.Context, r *Repository, entities ...*T) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return Update[T](ctx, r, entities...)
	})
}

func UpdateColumnsAsync[T any](ctx context.Context, r *Repository, entity *T, cols ...string) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return UpdateColumns[T](ctx, r, entity, cols...)
	})
}

func UpdateWhereAsync[T any](ctx context.Context, r *Repository, entity *T, ps ...Predicate) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return UpdateWhere[T](ctx, r, entity, ps...)
	})
}

func DeleteAsync[T any](ctx context.Context, r *Repository, entities ...*T) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return Delete[T](ctx, r, entities...)
	})
}

func DeleteWhereAsync[T any](ctx context.Context, r *Repository, ps ...Predicate) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return DeleteWhere[T](ctx, r, ps...)
	})
}

func DeleteByKeyAsync[T any](ctx context.Context, r *Repository, keys ...any) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return DeleteByKey[T](ctx, r, keys...)
	})
}

func DeleteAllAsync[T any](ctx context.Context, r *Repository) *Future[int64] {
	return submit(ctx, r, func(ctx context.Context) (int64, error) {
		return DeleteAll[T](ctx, r)
	})
}
