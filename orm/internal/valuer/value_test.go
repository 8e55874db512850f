package valuer_test

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/internal/valuer"
	"github.com/coderi421/sqlmapper/orm/internal/valuer/unsafe"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

type Base struct {
	CreatedBy string
}

type Audit struct {
	UpdatedBy string
}

type Car struct {
	Id    int64
	Name  string `orm:"column=car_name"`
	Price float64
	Owner *sql.NullString
	Base
	Note string `orm:"ignore"`
}

type Truck struct {
	Id int
	*Audit
}

var creators = map[string]valuer.Creator{
	"reflect": valuer.NewReflectValue,
	"unsafe":  unsafe.NewUnsafeValue,
}

func TestValue_SetColumns(t *testing.T) {
	testCases := []struct {
		name    string
		cols    []string
		row     []driver.Value
		entity  func() any
		wantVal any
	}{
		{
			name: "column names",
			cols: []string{"Id", "car_name", "Price", "Owner", "CreatedBy"},
			row: []driver.Value{
				[]byte("1"), []byte("Model T"), []byte("9.5"), []byte("Ford"), []byte("admin"),
			},
			entity: func() any { return &Car{} },
			wantVal: &Car{
				Id:    1,
				Name:  "Model T",
				Price: 9.5,
				Owner: &sql.NullString{String: "Ford", Valid: true},
				Base:  Base{CreatedBy: "admin"},
			},
		},
		{
			// SELECT 的时候列名和字段名不一样会带别名
			name:    "property alias",
			cols:    []string{"ID", "Name"},
			row:     []driver.Value{[]byte("2"), []byte("Beetle")},
			entity:  func() any { return &Car{} },
			wantVal: &Car{Id: 2, Name: "Beetle"},
		},
		{
			name:    "unknown column discarded",
			cols:    []string{"_row_number", "Id", "RNUM"},
			row:     []driver.Value{[]byte("11"), []byte("3"), []byte("11")},
			entity:  func() any { return &Car{} },
			wantVal: &Car{Id: 3},
		},
		{
			name:    "ignored column discarded",
			cols:    []string{"Id", "Note"},
			row:     []driver.Value{[]byte("4"), []byte("hello")},
			entity:  func() any { return &Car{} },
			wantVal: &Car{Id: 4},
		},
		{
			name:    "embedded pointer",
			cols:    []string{"Id", "UpdatedBy"},
			row:     []driver.Value{[]byte("5"), []byte("root")},
			entity:  func() any { return &Truck{} },
			wantVal: &Truck{Id: 5, Audit: &Audit{UpdatedBy: "root"}},
		},
	}

	for name, creator := range creators {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				val := tc.entity()
				meta, err := mapper.NewAuto(reflect.TypeOf(val).Elem())
				require.NoError(t, err)

				mock.ExpectQuery("SELECT *").
					WillReturnRows(sqlmock.NewRows(tc.cols).AddRow(tc.row...))
				rows, err := db.Query("SELECT *")
				require.NoError(t, err)
				defer func() { _ = rows.Close() }()
				require.True(t, rows.Next())

				err = creator(val, meta).SetColumns(rows)
				require.NoError(t, err)
				assert.Equal(t, tc.wantVal, val)
			})
		}
	}
}

func TestValue_Field(t *testing.T) {
	car := &Car{Id: 7, Name: "Civic", Base: Base{CreatedBy: "tom"}}
	meta, err := mapper.NewAuto(reflect.TypeOf(car).Elem())
	require.NoError(t, err)
	truck := &Truck{Id: 8}
	truckMeta, err := mapper.NewAuto(reflect.TypeOf(truck).Elem())
	require.NoError(t, err)

	for name, creator := range creators {
		t.Run(name, func(t *testing.T) {
			val := creator(car, meta)
			id, err := val.Field("Id")
			require.NoError(t, err)
			assert.Equal(t, int64(7), id)

			createdBy, err := val.Field("CreatedBy")
			require.NoError(t, err)
			assert.Equal(t, "tom", createdBy)

			_, err = val.Field("Color")
			assert.Equal(t, errs.NewErrUnknownField("Color"), err)

			// 嵌入的指针是 nil，返回零值
			updatedBy, err := creator(truck, truckMeta).Field("UpdatedBy")
			require.NoError(t, err)
			assert.Equal(t, "", updatedBy)
		})
	}
}

func TestValue_SetField(t *testing.T) {
	testCases := []struct {
		name    string
		field   string
		val     any
		wantVal *Car
		wantErr bool
	}{
		{
			name:    "same type",
			field:   "Name",
			val:     "Golf",
			wantVal: &Car{Name: "Golf"},
		},
		{
			name:    "convertible",
			field:   "Id",
			val:     int32(12),
			wantVal: &Car{Id: 12},
		},
		{
			name:    "nil",
			field:   "Owner",
			val:     nil,
			wantVal: &Car{},
		},
		{
			name:    "not convertible",
			field:   "Id",
			val:     "abc",
			wantErr: true,
		},
		{
			name:    "unknown field",
			field:   "Color",
			val:     "red",
			wantErr: true,
		},
	}
	meta, err := mapper.NewAuto(reflect.TypeOf(Car{}))
	require.NoError(t, err)

	for name, creator := range creators {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				car := &Car{}
				err := creator(car, meta).SetField(tc.field, tc.val)
				if tc.wantErr {
					assert.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tc.wantVal, car)
			})
		}
	}
}
