package orm

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/startdusk/dbrepo/orm/internal/taskpool"
	"github.com/startdusk/dbrepo/orm/internal/valuer"
	"github.com/startdusk/dbrepo/orm/mapper"
	"github.com/startdusk/dbrepo/orm/model"
	"github.com/startdusk/dbrepo/orm/paging"
)

const defaultCommandTimeout = 240 * time.Second

var (
	_ Session = &Repository{}
)

// conn 仓储独占的数据库连接, *sql.Conn 就是它的实现
//
//go:generate mockgen -source=db.go -destination=mocks/conn.mock.go -package=mocks -mock_names=conn=MockConn
type conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

type Option func(r *Repository)

// Repository 绑定一个数据库连接和一种方言, 所有的语句都在这个连接上执行.
// 同一时间最多只有一个事务, 仓储本身不负责并发控制,
// 不要在多个 goroutine 里面同时使用, 需要异步的时候使用 ...Async 方法
type Repository struct {
	core
	conn conn
	// db Open 的时候创建的, Close 的时候一起关闭
	db *sql.DB

	planner paging.Planner
	pageCfg paging.Config
	worker  *taskpool.Worker

	lock   sync.Mutex
	tx     *sql.Tx
	closed bool
}

// NewRepository 从 db 里面独占一个连接, 临时表只在同一个连接上可见
func NewRepository(ctx context.Context, db *sql.DB, dialect paging.Dialect, opts ...Option) (*Repository, error) {
	if _, err := DialectOf(dialect); err != nil {
		return nil, err
	}
	c, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	r, err := newRepository(c, dialect, opts...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return r, nil
}

func Open(driver string, dataSourceName string, dialect paging.Dialect, opts ...Option) (*Repository, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, err
	}
	r, err := NewRepository(context.Background(), db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.db = db
	return r, nil
}

func MustOpen(driver string, dataSourceName string, dialect paging.Dialect, opts ...Option) *Repository {
	r, err := Open(driver, dataSourceName, dialect, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func newRepository(c conn, dialect paging.Dialect, opts ...Option) (*Repository, error) {
	d, err := DialectOf(dialect)
	if err != nil {
		return nil, err
	}
	planner, err := paging.NewPlanner(dialect)
	if err != nil {
		return nil, err
	}
	r := &Repository{
		core: core{
			r:       model.NewRegistry(),
			creator: valuer.NewUnsafeValue,
			dialect: d,
			timeout: defaultCommandTimeout,
			logger:  slog.Default(),
		},
		conn:    c,
		planner: planner,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.mapper = mapper.New(mapper.WithRegistry(r.r))
	r.worker = taskpool.NewWorker(64)
	return r, nil
}

// WithCommandTimeout 每一条语句的超时时间, 默认 240 秒, 0 表示不限制
func WithCommandTimeout(timeout time.Duration) Option {
	return func(r *Repository) {
		r.timeout = timeout
	}
}

func WithRegistry(reg model.Registry) Option {
	return func(r *Repository) {
		r.r = reg
	}
}

func WithMiddlewares(mdls ...Middleware) Option {
	return func(r *Repository) {
		r.mdls = mdls
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPageConfig 分页的默认每页数量和上限
func WithPageConfig(cfg paging.Config) Option {
	return func(r *Repository) {
		r.pageCfg = cfg
	}
}

// WithReflectValuer 使用反射读写字段
func WithReflectValuer() Option {
	return func(r *Repository) {
		r.creator = valuer.NewReflectValue
	}
}

// WithUnsafeValuer 使用 unsafe 读写字段, 这是默认的实现
func WithUnsafeValuer() Option {
	return func(r *Repository) {
		r.creator = valuer.NewUnsafeValue
	}
}

// Dialect 仓储创建之后不会再变
func (r *Repository) Dialect() paging.Dialect {
	return r.dialect.Name()
}

func (r *Repository) getCore() core {
	return r.core
}

func (r *Repository) current() (executor, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return nil, ErrRepoClosed
	}
	if r.tx != nil {
		return r.tx, nil
	}
	return r.conn, nil
}

func (r *Repository) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	e, err := r.current()
	if err != nil {
		return nil, err
	}
	return e.QueryContext(ctx, query, args...)
}

func (r *Repository) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	e, err := r.current()
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, query, args...)
}
