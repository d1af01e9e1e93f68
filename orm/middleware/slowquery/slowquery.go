package slowquery

import (
	"context"
	"log/slog"
	"time"

	"github.com/startdusk/dbrepo/orm"
)

type MiddlewareBuilder struct {
	// 存在问题, SQL参数存在敏感数据不应该被打印出来
	// 使用 debug 标记为标记是否打印出参数(不推荐做法, 会入侵大面积代码)
	logFunc func(query string, args []any, duration time.Duration)

	// 慢查询阈值, 设置需要考虑公司实际情况, 如100ms
	threshold time.Duration
}

// NewMiddlewareBuilder fn 为 nil 的时候使用 slog.Default 在 Warn 级别输出
func NewMiddlewareBuilder(threshold time.Duration, fn func(query string, args []any, duration time.Duration)) *MiddlewareBuilder {
	if fn == nil {
		fn = slogFunc(slog.Default())
	}
	return &MiddlewareBuilder{
		logFunc:   fn,
		threshold: threshold,
	}
}

func NewSlogMiddlewareBuilder(threshold time.Duration, logger *slog.Logger) *MiddlewareBuilder {
	return NewMiddlewareBuilder(threshold, slogFunc(logger))
}

func slogFunc(logger *slog.Logger) func(query string, args []any, duration time.Duration) {
	return func(query string, args []any, duration time.Duration) {
		logger.Warn("orm: 慢查询",
			slog.String("sql", query),
			slog.Duration("duration", duration))
	}
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime)
				// 不是慢查询
				if duration <= m.threshold {
					return
				}

				// 是慢查询, 记录一下, 不处理错误(如果错误了, 证明SQL都没构造出来)
				q, err := qc.Builder.Build()
				if err == nil {
					m.logFunc(q.SQL, q.Args, duration)
				}
			}()

			// 不调用next就是dry run
			return next(ctx, qc)
		}
	}
}
