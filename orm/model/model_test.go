package model

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/startdusk/dbrepo/orm/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RegistryGet(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string

		entity    any
		wantTable string
		wantErr   error
		// GoName -> ColName
		wantCols map[string]string
		wantPK   []string
	}{
		{
			name:      "test pointer model",
			entity:    &TestModel{},
			wantTable: "test_model",
			wantCols: map[string]string{
				"ID":        "id",
				"FirstName": "first_name",
				"Age":       "age",
				"LastName":  "last_name",
			},
			wantPK: []string{"ID"},
		},
		{
			name: "tag",
			entity: func() any {
				type TagTable struct {
					Code      string `orm:"column=code_t,pk=true"`
					FirstName string `orm:"column=first_name_t"`
				}
				return &TagTable{}
			}(),
			wantTable: "tag_table",
			wantCols: map[string]string{
				"Code":      "code_t",
				"FirstName": "first_name_t",
			},
			wantPK: []string{"Code"},
		},
		{
			name: "empty column",
			entity: func() any {
				type TagTable struct {
					FirstName string `orm:"column="`
				}
				return &TagTable{}
			}(),
			wantTable: "tag_table",
			wantCols:  map[string]string{"FirstName": "first_name"},
		},
		{
			name: "embedded",
			entity: func() any {
				type OrderItem struct {
					BaseEntity
					Amount int
				}
				return &OrderItem{}
			}(),
			wantTable: "order_item",
			wantCols: map[string]string{
				"ID":        "id",
				"CreatedBy": "created_by",
				"Amount":    "amount",
			},
			wantPK: []string{"ID"},
		},
		{
			name:      "custom table name",
			entity:    &CustomTableName{},
			wantTable: "custom_table_name_t",
			wantCols:  map[string]string{"FirstName": "first_name"},
		},
		{
			name:      "custom table name for ptr",
			entity:    &CustomTableNamePtr{},
			wantTable: "custom_table_name_ptr_t",
			wantCols:  map[string]string{"FirstName": "first_name"},
		},
		{
			name: "invalid column",
			entity: func() any {
				type TagTable struct {
					FirstName string `orm:"column"`
				}
				return &TagTable{}
			}(),
			wantErr: errs.NewErrIinvalidTagContent("column"),
		},
		{
			name:    "struct",
			entity:  TestModel{},
			wantErr: errs.ErrPointerOnly,
		},
		{
			name:    "map",
			entity:  map[string]string{"1": "1"},
			wantErr: errs.ErrPointerOnly,
		},
	}

	r := NewRegistry()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := r.Get(c.entity)
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantTable, m.TableName)
			assert.Len(t, m.Fields, len(c.wantCols))
			for goName, colName := range c.wantCols {
				fd, ok := m.FieldMap[goName]
				require.True(t, ok, goName)
				assert.Equal(t, colName, fd.ColName)
				assert.Same(t, fd, m.ColumnMap[colName])
			}
			var pks []string
			for _, fd := range m.PrimaryKeys {
				pks = append(pks, fd.GoName)
			}
			assert.Equal(t, c.wantPK, pks)

			again, err := r.Get(c.entity)
			require.NoError(t, err)
			assert.Same(t, m, again)
		})
	}
}

func Test_RegistryRegister(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register(&TestModel{},
		ModelWithTableName("TEST_MODEL"),
		ModelWithColumnName("FirstName", "firstname"),
		ModelWithPrimaryKey("FirstName", "Age"))
	require.NoError(t, err)
	assert.Equal(t, "TEST_MODEL", m.TableName)
	assert.Equal(t, "firstname", m.FieldMap["FirstName"].ColName)
	_, ok := m.ColumnMap["first_name"]
	assert.False(t, ok)
	assert.Len(t, m.PrimaryKeys, 2)
	assert.False(t, m.FieldMap["ID"].PrimaryKey)

	got, err := r.Get(&TestModel{})
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = r.Register(&TestModel{}, ModelWithColumnName("Nope", "x"))
	assert.Equal(t, errs.NewErrUnknownField("Nope"), err)
}

func Test_FieldOffset(t *testing.T) {
	m, err := NewRegistry().Get(&TestModel{})
	require.NoError(t, err)
	typ := reflect.TypeOf(TestModel{})
	for i := 0; i < typ.NumField(); i++ {
		fd := typ.Field(i)
		assert.Equal(t, fd.Offset, m.FieldMap[fd.Name].Offset)
		assert.Equal(t, fd.Type, m.FieldMap[fd.Name].Type)
	}
}

func Test_FieldByColumn(t *testing.T) {
	m, err := NewRegistry().Get(&TestModel{})
	require.NoError(t, err)
	for _, name := range []string{"first_name", "FIRST_NAME", "firstname", "FirstName"} {
		fd, ok := m.FieldByColumn(name)
		require.True(t, ok, name)
		assert.Equal(t, "FirstName", fd.GoName)
	}
	_, ok := m.FieldByColumn("nickname")
	assert.False(t, ok)
}

func Test_underscoreName(t *testing.T) {
	cases := map[string]string{
		"ID":         "id",
		"FirstName":  "first_name",
		"UserID":     "user_id",
		"HTTPServer": "http_server",
		"ADUserT":    "ad_user_t",
	}
	for in, want := range cases {
		assert.Equal(t, want, underscoreName(in), in)
	}
}

type BaseEntity struct {
	ID        int64
	CreatedBy string
}

type CustomTableName struct {
	FirstName string
}

func (c CustomTableName) TableName() string {
	return "custom_table_name_t"
}

type CustomTableNamePtr struct {
	FirstName string
}

func (c *CustomTableNamePtr) TableName() string {
	return "custom_table_name_ptr_t"
}

type TestModel struct {
	ID        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}
