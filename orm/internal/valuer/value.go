package valuer

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/coderi421/sqlmapper/orm/mapper"
)

// Value 是对结构体实例的内部抽象
type Value interface {
	// Field 返回字段的值，name 是字段名
	Field(name string) (any, error)
	// SetField 设置字段的值，val 的类型可以转换成字段类型即可，例如 int64 -> int
	SetField(name string, val any) error
	// SetColumns 把当前行的数据设置到结构体上
	// 结果集里没有映射的列会被丢弃，例如分页时候的行号
	SetColumns(rows *sql.Rows) error
}

// Creator 本质上也可以看所是 factory 模式，极其简单的 factory 模式
type Creator func(val any, meta mapper.ClassMapper) Value

// Lookup 结果集的列名可能是字段名（带别名），也可能是列名，PostgreSQL 还会转成小写
func Lookup(props []mapper.PropertyMap, column string) (mapper.PropertyMap, bool) {
	for _, p := range props {
		if p.Type() == nil || p.Ignored() {
			continue
		}
		if strings.EqualFold(p.Name(), column) || strings.EqualFold(p.ColumnName(), column) {
			return p, true
		}
	}
	return mapper.PropertyMap{}, false
}

func property(props []mapper.PropertyMap, name string) (mapper.PropertyMap, bool) {
	for _, p := range props {
		if p.Name() == name && p.Type() != nil {
			return p, true
		}
	}
	return mapper.PropertyMap{}, false
}

// Assign 把 val 转换成 fd 的类型再赋值，nil 设置成零值
func Assign(fd reflect.Value, val any) error {
	if val == nil {
		fd.SetZero()
		return nil
	}
	v := reflect.ValueOf(val)
	if v.Type() == fd.Type() {
		fd.Set(v)
		return nil
	}
	if v.CanConvert(fd.Type()) {
		fd.Set(v.Convert(fd.Type()))
		return nil
	}
	if fd.Kind() == reflect.Pointer && v.CanConvert(fd.Type().Elem()) {
		ptr := reflect.New(fd.Type().Elem())
		ptr.Elem().Set(v.Convert(fd.Type().Elem()))
		fd.Set(ptr)
		return nil
	}
	return fmt.Errorf("orm: 不能把 %s 赋值给 %s", v.Type(), fd.Type())
}
