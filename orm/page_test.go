package orm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/mapper"
	"github.com/startdusk/dbrepo/orm/ordering"
	"github.com/startdusk/dbrepo/orm/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedOrderItems 插入 n 条数据, amount 从 1 到 n, customer 按照 id % 3 分组
func seedOrderItems(t *testing.T, r *Repository, n int) {
	_, err := r.ExecuteBySql(context.Background(),
		"INSERT INTO `order_item`(`customer`, `amount`) "+
			"WITH RECURSIVE n(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM n WHERE i < ?) "+
			"SELECT 'c' || (i % 3), i FROM n", n)
	require.NoError(t, err)
}

func TestFindPage_MySQLBatch(t *testing.T) {
	r, mock := mockRepository(t, paging.MySQL)
	noColumns := func() *sqlmock.Rows { return sqlmock.NewRows(nil) }
	mock.ExpectQuery("DROP TEMPORARY TABLE IF EXISTS TEMPORARY_[0-9A-F]+;CREATE TEMPORARY TABLE .* AS T;SELECT COUNT\\(1\\) AS Total .*LIMIT 2 OFFSET 2;DROP .*").
		WillReturnRows(
			noColumns(),
			noColumns(),
			sqlmock.NewRows([]string{"Total"}).AddRow(int64(5)),
			sqlmock.NewRows([]string{"id", "first_name", "age"}).
				AddRow(3, "Tom", 18).
				AddRow(4, "Jerry", 19),
			noColumns(),
		)

	res, err := FindPageBySql[TestModel](context.Background(), r, paging.Request{
		SQL:       "SELECT * FROM `test_model` WHERE `age` >= 18;",
		OrderBy:   "id",
		Ascending: true,
		PageSize:  2,
		PageIndex: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, 3, res.TotalPages())
	assert.True(t, res.HasNext())
	assert.True(t, res.HasPrevious())
	assert.Equal(t, []TestModel{
		{ID: 3, FirstName: "Tom", Age: 18},
		{ID: 4, FirstName: "Jerry", Age: 19},
	}, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 带参数的时候 MySQL 不能一次执行多条语句, 在同一个连接上逐条执行
func TestFindPage_MySQLWithArgs(t *testing.T) {
	r, mock := mockRepository(t, paging.MySQL)
	mock.ExpectExec("^DROP TEMPORARY TABLE IF EXISTS TEMPORARY_[0-9A-F]+$").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("^CREATE TEMPORARY TABLE TEMPORARY_[0-9A-F]+ SELECT \\* FROM \\(SELECT \\* FROM `test_model` WHERE `age` >= \\?\\) AS T$").
		WithArgs(18).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery("^SELECT COUNT\\(1\\) AS Total FROM TEMPORARY_[0-9A-F]+$").
		WillReturnRows(sqlmock.NewRows([]string{"Total"}).AddRow(int64(5)))
	mock.ExpectQuery("^SELECT \\* FROM TEMPORARY_[0-9A-F]+ AS X ORDER BY id ASC LIMIT 2 OFFSET 2$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "age"}).
			AddRow(3, "Tom", 18).
			AddRow(4, "Jerry", 19))
	mock.ExpectExec("^DROP TEMPORARY TABLE IF EXISTS TEMPORARY_[0-9A-F]+$").
		WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := FindPageBySql[TestModel](context.Background(), r, paging.Request{
		SQL:       "SELECT * FROM `test_model` WHERE `age` >= ?;",
		Args:      []any{18},
		OrderBy:   "id",
		Ascending: true,
		PageSize:  2,
		PageIndex: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, []TestModel{
		{ID: 3, FirstName: "Tom", Age: 18},
		{ID: 4, FirstName: "Jerry", Age: 19},
	}, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPage_MissingTotal(t *testing.T) {
	r, mock := mockRepository(t, paging.MySQL)
	mock.ExpectQuery("DROP TEMPORARY TABLE .*").WillReturnRows(sqlmock.NewRows(nil))
	// 批量执行失败之后还要清理临时表
	mock.ExpectExec("DROP TEMPORARY TABLE IF EXISTS TEMPORARY_[0-9A-F]+").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := r.FindTablePage(context.Background(), paging.Request{
		SQL:       "SELECT * FROM `test_model`",
		PageSize:  10,
		PageIndex: 1,
	})
	assert.Equal(t, errs.ErrMissingTotal, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPage_BatchError(t *testing.T) {
	r, mock := mockRepository(t, paging.MySQL)
	queryErr := errors.New("query error")
	mock.ExpectQuery("DROP TEMPORARY TABLE .*").WillReturnError(queryErr)
	mock.ExpectExec("DROP TEMPORARY TABLE .*").WillReturnError(errors.New("cleanup error"))

	_, err := r.FindTablePage(context.Background(), paging.Request{
		SQL:       "SELECT * FROM `test_model`",
		PageSize:  10,
		PageIndex: 1,
	})
	// 清理失败只记录日志
	assert.Equal(t, queryErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPage_InvalidRequest(t *testing.T) {
	r, _ := mockRepository(t, paging.MySQL)
	testCases := []struct {
		name    string
		req     paging.Request
		wantErr error
	}{
		{
			name:    "zero size",
			req:     paging.Request{SQL: "SELECT 1", PageIndex: 1},
			wantErr: errs.ErrInvalidPageSize,
		},
		{
			name:    "zero index",
			req:     paging.Request{SQL: "SELECT 1", PageSize: 10},
			wantErr: errs.ErrInvalidPageIndex,
		},
		{
			name:    "injection",
			req:     paging.Request{SQL: "SELECT 1", PageSize: 10, PageIndex: 1, OrderBy: "id; DROP TABLE x"},
			wantErr: errs.ErrInvalidOrderClause,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.FindTablePage(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestFindPage_SQLite(t *testing.T) {
	r := memoryRepository(t)
	seedOrderItems(t, r, 95)
	ctx := context.Background()

	res, err := FindPage[OrderItem](ctx, r, Page{
		Size:  10,
		Index: 10,
		Order: ordering.Spec{ordering.Desc("Amount"), ordering.Asc("ID")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(95), res.Total)
	assert.Equal(t, 10, res.TotalPages())
	assert.False(t, res.HasNext())
	require.Len(t, res.Rows, 5)
	for i, item := range res.Rows {
		assert.Equal(t, int64(5-i), item.Amount)
	}

	res, err = FindPage[OrderItem](ctx, r, Page{Size: 10, Index: 1, Order: ordering.Spec{ordering.Asc("ID")}},
		C("Customer").Eq("c0"))
	require.NoError(t, err)
	assert.Equal(t, int64(31), res.Total)
	require.Len(t, res.Rows, 10)
	assert.Equal(t, int64(3), res.Rows[0].ID)

	// 超出范围的页没有数据, 总数不变
	res, err = FindPage[OrderItem](ctx, r, Page{Size: 10, Index: 11})
	require.NoError(t, err)
	assert.Equal(t, int64(95), res.Total)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)

	_, err = FindPage[OrderItem](ctx, r, Page{Size: 10, Index: 1, Order: ordering.Spec{ordering.Asc("Nickname")}})
	assert.Equal(t, errs.NewErrUnknownField("Nickname"), err)
}

func TestFindPage_SQLiteWith(t *testing.T) {
	r := memoryRepository(t)
	seedOrderItems(t, r, 20)

	_, err := r.FindTablePageByWith(context.Background(), paging.Request{
		SQL:      "WITH T AS (SELECT `customer`, SUM(`amount`) AS `total` FROM `order_item` GROUP BY `customer`)",
		OrderBy:  "total DESC",
		PageSize: 2,
	})
	assert.ErrorIs(t, err, errs.ErrInvalidPageIndex)

	res, err := r.FindTablePageByWith(context.Background(), paging.Request{
		SQL:       "WITH T AS (SELECT `customer`, SUM(`amount`) AS `total` FROM `order_item` GROUP BY `customer`)",
		OrderBy:   "total",
		Ascending: false,
		PageSize:  2,
		PageIndex: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	require.Len(t, res.Rows, 2)
	first, ok := res.Rows[0].Get("customer")
	require.True(t, ok)
	// c2: 2+5+...+20 = 77, c1: 1+4+...+19 = 70, c0: 3+6+...+18 = 63
	assert.Equal(t, "c2", first)
	total, _ := res.Rows[0].Get("TOTAL")
	assert.Equal(t, int64(77), total)
}

func TestFindPage_PageConfig(t *testing.T) {
	r := memoryRepository(t, WithPageConfig(paging.Config{DefaultSize: 3, MaxSize: 5}))
	seedOrderItems(t, r, 8)
	ctx := context.Background()

	res, err := FindPageBySql[mapper.Record](ctx, r, paging.Request{SQL: "SELECT * FROM `order_item`"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.PageSize)
	assert.Equal(t, 1, res.PageIndex)
	assert.Len(t, res.Rows, 3)

	res, err = FindPageBySql[mapper.Record](ctx, r, paging.Request{SQL: "SELECT * FROM `order_item`", PageSize: 100, PageIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, res.PageSize)
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, int64(8), res.Total)
}
