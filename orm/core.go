package orm

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/internal/valuer"
	"github.com/startdusk/dbrepo/orm/mapper"
	"github.com/startdusk/dbrepo/orm/model"
)

type core struct {
	dialect Dialect
	creator valuer.Creator
	r       model.Registry
	mapper  *mapper.Mapper
	// timeout 每一条语句的超时时间, 0 表示不限制
	timeout time.Duration
	logger  *slog.Logger

	mdls []Middleware
}

// run 真正执行语句的地方, ctx 已经带上了超时时间
type run func(ctx context.Context, q *Query) (any, error)

// do 组装中间件链, 最里面的 Handler 负责构造语句和控制超时
func (c core) do(ctx context.Context, qc *QueryContext, fn run) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		q, err := qc.Builder.Build()
		if err != nil {
			return &QueryResult{Err: err}
		}
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		res, err := fn(ctx, q)
		return &QueryResult{Result: res, Err: err}
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	qr := root(ctx, qc)
	if qr.Err != nil && !errors.Is(qr.Err, errs.ErrNoRows) {
		c.logger.ErrorContext(ctx, "orm: 执行语句失败",
			slog.String("type", qc.Type), slog.Any("error", qr.Err))
	}
	return qr
}

// query 结果集在 rows 关闭之前由 read 物化, 超时的 context 也要等到 read 结束才取消
func query(ctx context.Context, sess Session, qc *QueryContext, read func(rows *sql.Rows) (any, error)) *QueryResult {
	return sess.getCore().do(ctx, qc, func(ctx context.Context, q *Query) (any, error) {
		rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return read(rows)
	})
}

func exec(ctx context.Context, sess Session, qc *QueryContext) Result {
	qr := sess.getCore().do(ctx, qc, func(ctx context.Context, q *Query) (any, error) {
		res, err := sess.execContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return nil, err
		}
		return Result{res: res}, nil
	})
	res, _ := qr.Result.(Result)
	if qr.Err != nil {
		res.err = qr.Err
	}
	return res
}

// modelOf T 不是实体的时候没有元数据
func modelOf[T any](reg model.Registry) *model.Model {
	s, ok := mapper.ShapeOf[T]().(mapper.EntityShape)
	if !ok {
		return nil
	}
	m, err := reg.Get(reflect.New(s.Type).Interface())
	if err != nil {
		return nil
	}
	return m
}
