package orm

import (
	"context"
	"database/sql"
	"errors"

	"github.com/startdusk/dbrepo/orm/internal/errs"
)

// Session 语句执行的会话, 开启事务之后语句都在事务里面执行
type Session interface {
	getCore() core
	queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	execContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// executor 当前执行语句的对象, 要么是连接, 要么是事务
type executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BeginTrans 开启事务, 同一时间只能有一个事务.
// ctx 被取消的时候数据库会回滚这个事务
func (r *Repository) BeginTrans(ctx context.Context) error {
	return r.BeginTransWith(ctx, nil)
}

func (r *Repository) BeginTransWith(ctx context.Context, opts *sql.TxOptions) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return errs.ErrRepoClosed
	}
	if r.tx != nil {
		return errs.ErrTxAlreadyBegun
	}
	tx, err := r.conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	r.tx = tx
	r.logger.DebugContext(ctx, "orm: 开启事务")
	return nil
}

func (r *Repository) Commit() error {
	tx, err := r.takeTx()
	if err != nil {
		return err
	}
	r.logger.Debug("orm: 提交事务")
	return tx.Commit()
}

func (r *Repository) Rollback() error {
	tx, err := r.takeTx()
	if err != nil {
		return err
	}
	r.logger.Debug("orm: 回滚事务")
	return rollbackIfNotCommit(tx)
}

// InTransaction 是否有开启的事务
func (r *Repository) InTransaction() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.tx != nil
}

func (r *Repository) takeTx() (*sql.Tx, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.tx == nil {
		return nil, errs.ErrNoActiveTx
	}
	tx := r.tx
	r.tx = nil
	return tx, nil
}

// DoTrans 在事务里面执行 fn, fn 返回 error 或者 panic 的时候回滚, 否则提交
func (r *Repository) DoTrans(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err = r.BeginTrans(ctx); err != nil {
		return err
	}

	panicked := true
	defer func() {
		if panicked || err != nil {
			rollbackErr := r.Rollback()
			err = errs.NewErrFailedToRollbackTx(err, rollbackErr, panicked)
		} else {
			err = r.Commit()
		}
	}()
	err = fn(ctx)
	// 执行过程中没有发生panic, 则标志位置为false
	panicked = false
	return err
}

// inTrans 没有开启事务的时候, 在一个隐式的事务里面执行 fn
func (r *Repository) inTrans(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.InTransaction() {
		return fn(ctx)
	}
	return r.DoTrans(ctx, fn)
}

// Close 等待异步任务执行完, 回滚没有提交的事务, 然后释放连接.
// 可以重复调用
func (r *Repository) Close() error {
	_ = r.worker.Close()

	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var err error
	if r.tx != nil {
		err = rollbackIfNotCommit(r.tx)
		r.tx = nil
	}
	err = errors.Join(err, r.conn.Close())
	if r.db != nil {
		err = errors.Join(err, r.db.Close())
	}
	return err
}

// 尝试回滚, 如果此时事务已经提交了, 或者被回滚掉了, 那么
// 就会得到sql.ErrTxDone错误, 这时候忽略这个错误就好
func rollbackIfNotCommit(tx *sql.Tx) error {
	err := tx.Rollback()
	if !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
