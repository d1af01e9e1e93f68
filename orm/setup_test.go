package orm

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/startdusk/dbrepo/orm/paging"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

type TestModel struct {
	ID        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

// OrderItem 用于 SQLite 上的增删改查
type OrderItem struct {
	ID       int64
	Customer string
	Amount   int64
	Remark   string
}

const orderItemDDL = "CREATE TABLE `order_item` (" +
	"`id` INTEGER PRIMARY KEY AUTOINCREMENT, " +
	"`customer` TEXT NOT NULL, " +
	"`amount` INTEGER NOT NULL, " +
	"`remark` TEXT NOT NULL DEFAULT '')"

func mockRepository(t *testing.T, dialect paging.Dialect, opts ...Option) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	r, err := NewRepository(context.Background(), db, dialect, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
		_ = db.Close()
	})
	return r, mock
}

// memoryRepository 每个测试一个独立的内存数据库
func memoryRepository(t *testing.T, opts ...Option) *Repository {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	r, err := Open("sqlite3", "file:"+name+"?mode=memory", paging.SQLite, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
	})
	_, err = r.ExecuteBySql(context.Background(), orderItemDDL)
	require.NoError(t, err)
	return r
}
