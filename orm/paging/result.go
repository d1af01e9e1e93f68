package paging

// Result 当前页的数据和总数
type Result[T any] struct {
	Rows      []T
	Total     int64
	PageSize  int
	PageIndex int
}

func NewResult[T any](rows []T, total int64, req Request) *Result[T] {
	if rows == nil {
		rows = []T{}
	}
	return &Result[T]{
		Rows:      rows,
		Total:     total,
		PageSize:  req.PageSize,
		PageIndex: req.PageIndex,
	}
}

func (r *Result[T]) TotalPages() int {
	if r.PageSize <= 0 || r.Total <= 0 {
		return 0
	}
	return int((r.Total + int64(r.PageSize) - 1) / int64(r.PageSize))
}

func (r *Result[T]) HasNext() bool {
	return r.PageIndex < r.TotalPages()
}

func (r *Result[T]) HasPrevious() bool {
	return r.PageIndex > 1
}

// Config 分页的默认值和上限, 零值表示不做任何调整
type Config struct {
	// DefaultSize 没有指定每页数量时使用
	DefaultSize int
	// MaxSize 每页数量的上限
	MaxSize int
}

func DefaultConfig() Config {
	return Config{
		DefaultSize: 50,
		MaxSize:     1000,
	}
}

// Normalize 只补充缺省值和截断上限, 非法的参数留给 Request.Validate
func (c Config) Normalize(req Request) Request {
	if c == (Config{}) {
		return req
	}
	if req.PageSize == 0 && c.DefaultSize > 0 {
		req.PageSize = c.DefaultSize
	}
	if c.MaxSize > 0 && req.PageSize > c.MaxSize {
		req.PageSize = c.MaxSize
	}
	if req.PageIndex == 0 {
		req.PageIndex = 1
	}
	return req
}
