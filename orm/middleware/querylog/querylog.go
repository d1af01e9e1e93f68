package querylog

import (
	"context"
	"log/slog"

	"github.com/startdusk/dbrepo/orm"
)

type MiddlewareBuilder struct {
	// 存在问题, SQL参数存在敏感数据不应该被打印出来
	// 使用 debug 标记为标记是否打印出参数(不推荐做法, 会入侵大面积代码)
	logFunc func(query string, args []any)
}

// NewMiddlewareBuilder fn 为 nil 的时候使用 slog.Default 在 Debug 级别输出, 不输出参数
func NewMiddlewareBuilder(fn func(query string, args []any)) *MiddlewareBuilder {
	if fn == nil {
		fn = func(query string, args []any) {
			slog.Debug("orm: 执行语句", slog.String("sql", query), slog.Int("args", len(args)))
		}
	}
	return &MiddlewareBuilder{
		logFunc: fn,
	}
}

// NewSlogMiddlewareBuilder 使用给定的 logger 输出
func NewSlogMiddlewareBuilder(logger *slog.Logger, level slog.Level) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(query string, args []any) {
			logger.Log(context.Background(), level, "orm: 执行语句",
				slog.String("sql", query), slog.Int("args", len(args)))
		},
	}
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			q, err := qc.Builder.Build()
			if err != nil {
				return &orm.QueryResult{
					Err: err,
				}
			}
			m.logFunc(q.SQL, q.Args)
			return next(ctx, qc)
		}
	}
}
