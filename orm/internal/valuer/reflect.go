package valuer

import (
	"database/sql"
	"reflect"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// reflectValue 基于反射的 Value
type reflectValue struct {
	val   reflect.Value
	props []mapper.PropertyMap
}

var _ Creator = NewReflectValue

// NewReflectValue 返回一个封装好的，基于反射实现的 Value
// 输入 val 必须是一个指向结构体实例的指针，而不能是任何其它类型
func NewReflectValue(val any, meta mapper.ClassMapper) Value {
	return &reflectValue{
		val:   reflect.ValueOf(val).Elem(),
		props: meta.Properties(),
	}
}

func (r *reflectValue) Field(name string) (any, error) {
	p, ok := property(r.props, name)
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	fd, err := r.val.FieldByIndexErr(p.Index())
	if err != nil {
		// 嵌入的指针是 nil
		return reflect.Zero(p.Type()).Interface(), nil
	}
	return fd.Interface(), nil
}

func (r *reflectValue) SetField(name string, val any) error {
	p, ok := property(r.props, name)
	if !ok {
		return errs.NewErrUnknownField(name)
	}
	return Assign(r.fieldForSet(p.Index()), val)
}

// SetColumns 将数据库中的数据设置到对应的 struct 上
func (r *reflectValue) SetColumns(rows *sql.Rows) error {
	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}

	// colValues 和 colEleValues 实质上最终都指向同一个对象
	colValues := make([]any, len(columnNames))
	colEleValues := make([]reflect.Value, len(columnNames))
	fields := make([]mapper.PropertyMap, len(columnNames))
	for i, name := range columnNames {
		p, ok := Lookup(r.props, name)
		if !ok {
			var discard any
			colValues[i] = &discard
			continue
		}
		// 构建出新的 reflect.Value，scan 完成之后再赋值给结构体
		value := reflect.New(p.Type())
		colValues[i] = value.Interface()
		colEleValues[i] = value.Elem()
		fields[i] = p
	}

	// 这里使用 colValues 而不是 colEleValues 是因为 scan 方法接收的是 []any 参数 而不是 []reflect.Value
	if err = rows.Scan(colValues...); err != nil {
		return err
	}

	for i := range columnNames {
		if !colEleValues[i].IsValid() {
			continue
		}
		fd := r.fieldForSet(fields[i].Index())
		fd.Set(colEleValues[i])
	}
	return nil
}

// fieldForSet 路径上的嵌入指针如果是 nil 就初始化
func (r *reflectValue) fieldForSet(index []int) reflect.Value {
	v := r.val
	for i, idx := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(idx)
	}
	return v
}
