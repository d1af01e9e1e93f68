package orm

import (
	"context"
	"database/sql"
	"strings"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/mapper"
	"github.com/startdusk/dbrepo/orm/ordering"
	"github.com/startdusk/dbrepo/orm/paging"
)

// Page 实体分页的参数, Index 从 1 开始
type Page struct {
	Size  int
	Index int
	Order ordering.Spec
}

// FindPage 满足条件的实体分页, 排序的路径会被转换成列名
func FindPage[T any](ctx context.Context, r *Repository, page Page, ps ...Predicate) (*paging.Result[*T], error) {
	s := NewSelector[T](r).Where(ps...)
	q, err := s.Build()
	if err != nil {
		return nil, err
	}
	order, err := s.orderClause(page.Order)
	if err != nil {
		return nil, err
	}
	return findPage[*T](ctx, r, paging.Request{
		SQL:       q.SQL,
		Args:      q.Args,
		OrderBy:   order,
		Ascending: true,
		PageSize:  page.Size,
		PageIndex: page.Index,
	})
}

// FindPageBySql req.SQL 是普通的查询语句
func FindPageBySql[T any](ctx context.Context, r *Repository, req paging.Request) (*paging.Result[T], error) {
	req.With = false
	return findPage[T](ctx, r, req)
}

// FindPageByWith req.SQL 是 WITH 语句, 最后一个 CTE 的名字必须是 T
func FindPageByWith[T any](ctx context.Context, r *Repository, req paging.Request) (*paging.Result[T], error) {
	req.With = true
	return findPage[T](ctx, r, req)
}

func (r *Repository) FindTablePage(ctx context.Context, req paging.Request) (*paging.Result[mapper.Record], error) {
	return FindPageBySql[mapper.Record](ctx, r, req)
}

func (r *Repository) FindTablePageByWith(ctx context.Context, req paging.Request) (*paging.Result[mapper.Record], error) {
	return FindPageByWith[mapper.Record](ctx, r, req)
}

// orderClause 排序条件转换成 "col ASC, col DESC"
func (s *Selector[T]) orderClause(spec ordering.Spec) (string, error) {
	if len(spec) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for i, key := range spec {
		fd, err := s.fieldByPath(key.Path)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		s.dialect.quote(&sb, fd.ColName)
		sb.WriteByte(' ')
		sb.WriteString(key.Direction.String())
	}
	return sb.String(), nil
}

// pageBuilder 批量执行的时候的完整语句, 逐条执行的时候仅供中间件观察
type pageBuilder struct {
	plan *paging.Plan
	args []any
}

func (p pageBuilder) Build() (*Query, error) {
	return &Query{
		SQL:  p.plan.SQL(),
		Args: p.plan.BindArgs(p.args),
	}, nil
}

type pageRows[T any] struct {
	rows  []T
	total int64
}

func findPage[T any](ctx context.Context, r *Repository, req paging.Request) (*paging.Result[T], error) {
	req = r.pageCfg.Normalize(req)
	plan, err := r.planner.Plan(req)
	if err != nil {
		return nil, err
	}
	qc := &QueryContext{
		Type:    TypePage,
		Builder: pageBuilder{plan: plan, args: req.Args},
	}
	qc.Model = modelOf[T](r.r)

	var res *QueryResult
	if plan.Batch {
		res = query(ctx, r, qc, func(rows *sql.Rows) (any, error) {
			return readBatch[T](r.mapper, rows)
		})
		if res.Err != nil {
			r.cleanup(ctx, plan, req.Args)
		}
	} else {
		res = r.do(ctx, qc, func(ctx context.Context, _ *Query) (any, error) {
			return runSequential[T](ctx, r, plan, req.Args)
		})
	}
	if res.Err != nil {
		return nil, res.Err
	}
	pr, _ := res.Result.(pageRows[T])
	return paging.NewResult(pr.rows, pr.total, req), nil
}

// readBatch 跳过没有列的结果集, 第一个有列的是总数, 第二个是当前页
func readBatch[T any](m *mapper.Mapper, rows *sql.Rows) (pageRows[T], error) {
	var (
		res   pageRows[T]
		sets  int
		found bool
	)
	for {
		cols, err := rows.Columns()
		if err != nil {
			return res, err
		}
		if len(cols) > 0 {
			switch sets {
			case 0:
				if res.total, found, err = mapper.Scalar[int64](rows); err != nil {
					return res, err
				}
				if !found {
					return res, errs.ErrMissingTotal
				}
			case 1:
				if res.rows, err = mapper.All[T](m, rows); err != nil {
					return res, err
				}
			}
			sets++
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return res, err
	}
	if sets == 0 {
		return res, errs.ErrMissingTotal
	}
	return res, nil
}

// runSequential 在同一个连接上逐条执行, 不管成功与否都会清理临时表
func runSequential[T any](ctx context.Context, r *Repository, plan *paging.Plan, args []any) (res pageRows[T], err error) {
	defer func() {
		r.cleanup(ctx, plan, args)
	}()
	for i, st := range plan.Statements {
		stArgs := plan.Args(i, args)
		switch st.Kind {
		case paging.Prepare:
			_, err = r.execContext(ctx, st.SQL, stArgs...)
		case paging.Count:
			err = r.queryRows(ctx, st.SQL, stArgs, func(rows *sql.Rows) error {
				total, found, err := mapper.Scalar[int64](rows)
				if err != nil {
					return err
				}
				if !found {
					return errs.ErrMissingTotal
				}
				res.total = total
				return nil
			})
		case paging.Page:
			err = r.queryRows(ctx, st.SQL, stArgs, func(rows *sql.Rows) error {
				var err error
				res.rows, err = mapper.All[T](r.mapper, rows)
				return err
			})
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// cleanup 删除临时表, 失败只记录日志
func (r *Repository) cleanup(ctx context.Context, plan *paging.Plan, args []any) {
	ctx = context.WithoutCancel(ctx)
	for i, st := range plan.Statements {
		if st.Kind != paging.Cleanup {
			continue
		}
		if _, err := r.execContext(ctx, st.SQL, plan.Args(i, args)...); err != nil {
			r.logger.WarnContext(ctx, "orm: 清理临时表失败",
				"table", plan.TempTable, "error", err)
		}
	}
}

func (r *Repository) queryRows(ctx context.Context, query string, args []any, fn func(rows *sql.Rows) error) error {
	rows, err := r.queryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return fn(rows)
}
