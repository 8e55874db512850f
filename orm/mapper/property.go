package mapper

import (
	"fmt"
	"reflect"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// KeyType 主键的分类
type KeyType int

const (
	// NotAKey 普通列
	NotAKey KeyType = iota
	// Identity 数据库自增的整数主键
	Identity
	// Guid 由客户端生成的 uuid 主键
	Guid
	// Assigned 由调用方自己赋值的主键
	Assigned
	// TriggerIdentity 由触发器生成，通过 RETURNING 子句取回
	TriggerIdentity
)

func (k KeyType) String() string {
	switch k {
	case NotAKey:
		return "NotAKey"
	case Identity:
		return "Identity"
	case Guid:
		return "Guid"
	case Assigned:
		return "Assigned"
	case TriggerIdentity:
		return "TriggerIdentity"
	default:
		return fmt.Sprintf("KeyType(%d)", int(k))
	}
}

// PropertyMap 一个被映射的字段
type PropertyMap struct {
	name       string
	columnName string
	keyType    KeyType
	ignored    bool
	readOnly   bool

	// typ 是字段在 go 中的类型，用来 scan 和推断主键类型
	typ reflect.Type
	// index 用于 reflect.Value.FieldByIndex，提升的字段会有多级
	index []int
	// offset 相对于结构体起始地址的偏移量，只有 direct 为 true 的时候才可以使用
	offset uintptr
	direct bool

	err error
}

// NewPropertyMap creates a property that is not backed by a struct field.
// It is mostly useful for hand-written ClassMapper implementations.
func NewPropertyMap(name string) *PropertyMap {
	return &PropertyMap{name: name, columnName: name}
}

func newFieldProperty(f field, namer func(string) string) *PropertyMap {
	col := f.Name
	if namer != nil {
		col = namer(f.Name)
	}
	return &PropertyMap{
		name:       f.Name,
		columnName: col,
		typ:        f.Type,
		index:      f.Index,
		offset:     f.offset,
		direct:     f.direct,
	}
}

func (p PropertyMap) Name() string       { return p.name }
func (p PropertyMap) ColumnName() string { return p.columnName }
func (p PropertyMap) KeyType() KeyType   { return p.keyType }
func (p PropertyMap) Ignored() bool      { return p.ignored }
func (p PropertyMap) ReadOnly() bool     { return p.readOnly }

// Type returns the Go type of the field, nil when the property has no field.
func (p PropertyMap) Type() reflect.Type { return p.typ }

// Index returns the field index sequence for reflect.Value.FieldByIndex.
func (p PropertyMap) Index() []int { return p.index }

// Offset returns the field offset from the struct start. ok is false when the
// field is reached through an embedded pointer.
func (p PropertyMap) Offset() (offset uintptr, ok bool) {
	return p.offset, p.direct && p.typ != nil
}

// Column 指定列名
func (p *PropertyMap) Column(name string) *PropertyMap {
	p.columnName = name
	return p
}

// Key 把字段标记为主键，被忽略或者只读的字段不能作为主键
func (p *PropertyMap) Key(kt KeyType) *PropertyMap {
	if kt != NotAKey && (p.ignored || p.readOnly) {
		p.fail(errs.NewErrInvalidProperty(p.name, "is ignored or read-only and cannot be made a key field"))
		return p
	}
	p.keyType = kt
	return p
}

// Ignore 忽略这个字段，所有语句都不会用到它
func (p *PropertyMap) Ignore() *PropertyMap {
	if p.keyType != NotAKey {
		p.fail(errs.NewErrInvalidProperty(p.name, "is a key field and cannot be ignored"))
		return p
	}
	p.ignored = true
	return p
}

// AsReadOnly 只读字段只出现在 SELECT 中
func (p *PropertyMap) AsReadOnly() *PropertyMap {
	if p.keyType != NotAKey {
		p.fail(errs.NewErrInvalidProperty(p.name, "is a key field and cannot be marked readonly"))
		return p
	}
	p.readOnly = true
	return p
}

func (p *PropertyMap) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
