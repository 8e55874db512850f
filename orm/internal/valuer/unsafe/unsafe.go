package unsafe

import (
	"database/sql"
	"reflect"
	"unsafe"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/internal/valuer"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// unsafeValue 通过字段偏移量直接读写内存
// 经过嵌入指针的字段没有固定的偏移量，这种情况退回到反射
type unsafeValue struct {
	addr  unsafe.Pointer // 使用 unsafe Pointer 而不是 uintptr 是因为 gc 后 uintptr 会发生变化
	props []mapper.PropertyMap
	slow  valuer.Value
}

var _ valuer.Creator = NewUnsafeValue

func NewUnsafeValue(val any, meta mapper.ClassMapper) valuer.Value {
	return &unsafeValue{
		addr:  reflect.ValueOf(val).UnsafePointer(),
		props: meta.Properties(),
		slow:  valuer.NewReflectValue(val, meta),
	}
}

func (u *unsafeValue) Field(name string) (any, error) {
	for _, p := range u.props {
		if p.Name() != name || p.Type() == nil {
			continue
		}
		offset, ok := p.Offset()
		if !ok {
			return u.slow.Field(name)
		}
		ptr := unsafe.Add(u.addr, offset)
		return reflect.NewAt(p.Type(), ptr).Elem().Interface(), nil
	}
	return nil, errs.NewErrUnknownField(name)
}

func (u *unsafeValue) SetField(name string, val any) error {
	for _, p := range u.props {
		if p.Name() != name || p.Type() == nil {
			continue
		}
		offset, ok := p.Offset()
		if !ok {
			return u.slow.SetField(name, val)
		}
		return valuer.Assign(reflect.NewAt(p.Type(), unsafe.Add(u.addr, offset)).Elem(), val)
	}
	return errs.NewErrUnknownField(name)
}

func (u *unsafeValue) SetColumns(rows *sql.Rows) error {
	for _, p := range u.props {
		if _, ok := p.Offset(); !ok && p.Type() != nil {
			return u.slow.SetColumns(rows)
		}
	}
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	colValues := make([]any, len(columns))
	for i, column := range columns {
		p, ok := valuer.Lookup(u.props, column)
		if !ok {
			var discard any
			colValues[i] = &discard
			continue
		}
		offset, _ := p.Offset()
		colValues[i] = reflect.NewAt(p.Type(), unsafe.Add(u.addr, offset)).Interface()
	}
	return rows.Scan(colValues...)
}
