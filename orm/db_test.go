package orm

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/startdusk/dbrepo/orm/mocks"
	"github.com/startdusk/dbrepo/orm/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRepository_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockConn(ctrl)
	closeErr := errors.New("close error")
	c.EXPECT().Close().Return(closeErr).Times(1)

	r, err := newRepository(c, paging.MySQL)
	require.NoError(t, err)
	assert.Equal(t, paging.MySQL, r.Dialect())

	assert.ErrorIs(t, r.Close(), closeErr)
	// 第二次关闭什么都不做
	assert.NoError(t, r.Close())

	_, err = r.ExecuteBySql(context.Background(), "DELETE FROM `test_model`")
	assert.Equal(t, errs.ErrRepoClosed, err)
	_, err = FindListBySql[TestModel](context.Background(), r, "SELECT * FROM `test_model`")
	assert.Equal(t, errs.ErrRepoClosed, err)
	assert.Equal(t, errs.ErrRepoClosed, r.BeginTrans(context.Background()))
}

func TestRepository_Exec(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockConn(ctrl)
	c.EXPECT().ExecContext(gomock.Any(), "DELETE FROM `test_model` WHERE `id` = ?", int64(1)).
		Return(driver.RowsAffected(1), nil)
	c.EXPECT().ExecContext(gomock.Any(), "DELETE FROM `test_model` WHERE `id` = ?", int64(2)).
		Return(nil, errors.New("exec error"))
	c.EXPECT().Close().Return(nil)

	r, err := newRepository(c, paging.MySQL)
	require.NoError(t, err)
	defer r.Close()

	affected, err := DeleteByKey[TestModel](context.Background(), r, int64(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = DeleteByKey[TestModel](context.Background(), r, int64(2))
	assert.EqualError(t, err, "exec error")
}

func TestRepository_CommandTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockConn(ctrl)
	c.EXPECT().ExecContext(gomock.Any(), "SELECT 1").
		DoAndReturn(func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
			return driver.RowsAffected(0), nil
		})
	c.EXPECT().Close().Return(nil)

	r, err := newRepository(c, paging.MySQL, WithCommandTimeout(time.Second))
	require.NoError(t, err)
	defer r.Close()
	_, err = r.ExecuteBySql(context.Background(), "SELECT 1")
	require.NoError(t, err)
}

func TestRepository_BeginTrans(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockConn(ctrl)
	beginErr := errors.New("begin error")
	c.EXPECT().BeginTx(gomock.Any(), gomock.Nil()).Return(nil, beginErr)
	c.EXPECT().Close().Return(nil)

	r, err := newRepository(c, paging.MySQL)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, beginErr, r.BeginTrans(context.Background()))
	assert.False(t, r.InTransaction())
	assert.Equal(t, errs.ErrNoActiveTx, r.Commit())
	assert.Equal(t, errs.ErrNoActiveTx, r.Rollback())
}

func TestRepository_UnsupportedDialect(t *testing.T) {
	_, err := newRepository(nil, paging.Dialect(100))
	assert.ErrorIs(t, err, errs.ErrUnsupportedDialect)
}

func TestRepository_DoTrans(t *testing.T) {
	testCases := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		fn      func(ctx context.Context, r *Repository) error
		wantErr error
	}{
		{
			name: "commit",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE `test_model`").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, r *Repository) error {
				assert.True(t, r.InTransaction())
				_, err := r.ExecuteBySql(ctx, "UPDATE `test_model` SET `age` = 1")
				return err
			},
		},
		{
			name: "rollback on error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE `test_model`").WillReturnError(errors.New("exec error"))
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, r *Repository) error {
				_, err := r.ExecuteBySql(ctx, "UPDATE `test_model` SET `age` = 1")
				return err
			},
			wantErr: errors.New("exec error"),
		},
		{
			name: "rollback on panic",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, r *Repository) error {
				panic("boom")
			},
		},
		{
			name: "nested begin",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, r *Repository) error {
				return r.BeginTrans(ctx)
			},
			wantErr: errs.ErrTxAlreadyBegun,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, mock := mockRepository(t, paging.MySQL)
			tc.mock(mock)
			if tc.name == "rollback on panic" {
				assert.Panics(t, func() {
					_ = r.DoTrans(context.Background(), func(ctx context.Context) error {
						return tc.fn(ctx, r)
					})
				})
			} else {
				err := r.DoTrans(context.Background(), func(ctx context.Context) error {
					return tc.fn(ctx, r)
				})
				assert.Equal(t, tc.wantErr, err)
			}
			assert.False(t, r.InTransaction())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
