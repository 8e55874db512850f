package mapper

import (
	"reflect"
)

// field 是一个可以映射的结构体字段
type field struct {
	reflect.StructField
	// offset 是累加之后的偏移量，提升字段也是相对最外层结构体
	offset uintptr
	direct bool
}

// iterateFields 返回所有可以映射的字段，保持声明的顺序
// 嵌入的结构体会被展开，它的字段紧跟在它出现的位置
// 非导出字段跳过
func iterateFields(typ reflect.Type) []field {
	visible := reflect.VisibleFields(typ)
	res := make([]field, 0, len(visible))
	for _, fd := range visible {
		if !fd.IsExported() {
			continue
		}
		if fd.Anonymous && isStruct(fd.Type) {
			continue
		}
		off, direct := fieldOffset(typ, fd.Index)
		res = append(res, field{StructField: fd, offset: off, direct: direct})
	}
	return res
}

// fieldOffset 沿着 index 累加偏移量
// 经过嵌入指针的字段，偏移量没有意义
func fieldOffset(typ reflect.Type, index []int) (uintptr, bool) {
	var off uintptr
	direct := true
	t := typ
	for i, idx := range index {
		fd := t.Field(idx)
		off += fd.Offset
		t = fd.Type
		if i < len(index)-1 && t.Kind() == reflect.Pointer {
			direct = false
			t = t.Elem()
		}
	}
	return off, direct
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// indirect 处理多重指针，拿到指针指向的类型
func indirect(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ
}
