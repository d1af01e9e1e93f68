//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/startdusk/dbrepo/orm"
	"github.com/startdusk/dbrepo/orm/internal/test"
	"github.com/startdusk/dbrepo/orm/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMySQLInsert(t *testing.T) {
	suite.Run(t, &InsertSuite{
		Suite{
			driver:  "mysql",
			dsn:     mysqlDSN,
			dialect: paging.MySQL,
		},
	})
}

func TestPostgresInsert(t *testing.T) {
	suite.Run(t, &InsertSuite{
		Suite{
			driver:  "postgres",
			dsn:     postgresDSN,
			dialect: paging.Postgres,
		},
	})
}

type InsertSuite struct {
	Suite
}

// 每次执行结束后, 执行这个函数
func (i *InsertSuite) TearDownTest() {
	i.truncate("simple_struct")
}

func (i *InsertSuite) TestInsert() {
	t := i.T()
	db := i.db
	cases := []struct {
		name         string
		i            *orm.Inserter[test.SimpleStruct]
		wantAffected int64 // 插入行数
	}{
		{
			name:         "insert one",
			i:            orm.NewInserter[test.SimpleStruct](db).Values(test.NewSimpleStruct(55)),
			wantAffected: 1,
		},
		{
			name: "insert multiple",
			i: orm.NewInserter[test.SimpleStruct](db).Values(
				test.NewSimpleStruct(56),
				test.NewSimpleStruct(57),
			),
			wantAffected: 2,
		},
		{
			name:         "insert id",
			i:            orm.NewInserter[test.SimpleStruct](db).Values(&test.SimpleStruct{ID: 58}),
			wantAffected: 1,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			res := c.i.Exec(ctx)
			affected, err := res.RowsAffected()
			assert.NoError(t, err)
			assert.Equal(t, c.wantAffected, affected)
		})
	}
}

func (i *InsertSuite) TestInsertRollback() {
	t := i.T()
	ctx := context.Background()
	_, err := orm.Insert(ctx, i.db, test.NewSimpleStruct(60), test.NewSimpleStruct(60))
	require.Error(t, err)

	cnt, _, err := orm.RawQuery[int64](i.db, "SELECT COUNT(*) FROM "+i.quote("simple_struct")).Scalar(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
}
