package mapper

import (
	"reflect"
	"strings"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// ClassMapper 实体类型到表的映射
// 构造完成之后就不会再修改，可以被多个 goroutine 并发读
type ClassMapper interface {
	SchemaName() string
	TableName() string
	EntityType() reflect.Type
	// Properties 返回按照声明顺序排列的字段映射，返回的是副本
	Properties() []PropertyMap
}

// TableNamer 用户在实体上实现这个接口来返回自定义的表名
type TableNamer interface {
	TableName() string
}

// Option configures a mapper before its table name is resolved and its
// members are mapped.
type Option func(m *core)

// WithTableResolver overrides the table name resolution. The pluralized
// mapper uses Pluralize; a custom resolver can redirect naming exceptions
// and fall back to Pluralize for everything else.
func WithTableResolver(fn func(name string) string) Option {
	return func(m *core) {
		m.resolver = fn
	}
}

// WithColumnNamer 列名的生成策略，默认列名和字段名一样
func WithColumnNamer(fn func(name string) string) Option {
	return func(m *core) {
		m.namer = fn
	}
}

// Pluralized 表名使用复数形式
func Pluralized() Option {
	return WithTableResolver(Pluralize)
}

// core 是不带泛型的映射实现，Mapper[T] 和自动映射都基于它
type core struct {
	typ    reflect.Type
	schema string
	table  string
	props  []*PropertyMap

	resolver func(string) string
	namer    func(string) string

	fields []field
	err    error
}

var _ ClassMapper = &core{}

func newCore(typ reflect.Type, opts ...Option) *core {
	m := &core{typ: typ}
	for _, opt := range opts {
		opt(m)
	}
	if typ.Kind() != reflect.Struct {
		m.err = errs.NewErrMapNotFound(typ)
		return m
	}
	m.fields = iterateFields(typ)
	if tn, ok := reflect.New(typ).Interface().(TableNamer); ok && tn.TableName() != "" {
		m.table = tn.TableName()
	} else {
		m.setTable(typ.Name())
	}
	return m
}

func (m *core) SchemaName() string       { return m.schema }
func (m *core) TableName() string        { return m.table }
func (m *core) EntityType() reflect.Type { return m.typ }

func (m *core) Properties() []PropertyMap {
	res := make([]PropertyMap, len(m.props))
	for i, p := range m.props {
		res[i] = *p
	}
	return res
}

// Err 返回构造过程中遇到的第一个错误
func (m *core) Err() error {
	if m.err != nil {
		return m.err
	}
	for _, p := range m.props {
		if p.err != nil {
			return p.err
		}
	}
	return nil
}

func (m *core) setTable(name string) {
	if m.resolver != nil {
		name = m.resolver(name)
	}
	m.table = name
}

func (m *core) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

// mapField 同一个字段多次 Map 返回同一个 PropertyMap
func (m *core) mapField(f field) *PropertyMap {
	for _, p := range m.props {
		if p.name == f.Name {
			return p
		}
	}
	p := newFieldProperty(f, m.namer)
	m.props = append(m.props, p)
	return p
}

func (m *core) mapName(name string) *PropertyMap {
	for _, f := range m.fields {
		if f.Name == name {
			return m.mapField(f)
		}
	}
	m.fail(errs.NewErrUnknownField(name))
	return &PropertyMap{name: name, columnName: name}
}

func (m *core) mapped(name string) bool {
	for _, p := range m.props {
		if strings.EqualFold(p.name, name) {
			return true
		}
	}
	return false
}

// Mapper 手写映射的构造器
//
//	m := mapper.New[User]().Table("users")
//	m.Map(func(u *User) any { return &u.ID }).Key(mapper.Assigned)
//	m.Map(func(u *User) any { return &u.Nickname }).Ignore()
//	m.AutoMap()
type Mapper[T any] struct {
	*core
}

// New 表名默认是类型名，没有任何字段
func New[T any](opts ...Option) *Mapper[T] {
	return &Mapper[T]{core: newCore(reflect.TypeOf((*T)(nil)).Elem(), opts...)}
}

// Auto 按照约定自动映射所有字段
func Auto[T any](opts ...Option) *Mapper[T] {
	return New[T](opts...).AutoMap()
}

// PluralizedAuto 和 Auto 一样，但是表名是复数
func PluralizedAuto[T any](opts ...Option) *Mapper[T] {
	return Auto[T](append([]Option{Pluralized()}, opts...)...)
}

func (m *Mapper[T]) Schema(name string) *Mapper[T] {
	m.schema = name
	return m
}

// Table sets the table name through the configured resolver.
func (m *Mapper[T]) Table(name string) *Mapper[T] {
	m.setTable(name)
	return m
}

// Map 通过字段指针选择字段，例如 func(u *User) any { return &u.Name }
func (m *Mapper[T]) Map(selector func(t *T) any) *PropertyMap {
	if m.err != nil && m.fields == nil {
		return &PropertyMap{}
	}
	entity := new(T)
	ptr := reflect.ValueOf(selector(entity))
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		m.fail(errs.ErrPointerOnly)
		return &PropertyMap{}
	}
	base := reflect.ValueOf(entity).Pointer()
	offset := ptr.Pointer() - base
	ft := ptr.Type().Elem()
	for _, f := range m.fields {
		if f.direct && f.offset == offset && f.Type == ft {
			return m.mapField(f)
		}
	}
	m.fail(errs.NewErrUnknownField(ft.String()))
	return &PropertyMap{}
}

// MapName 通过字段名选择字段
func (m *Mapper[T]) MapName(name string) *PropertyMap {
	return m.mapName(name)
}

// AutoMap maps every member not mapped yet. canMap filters members; explicit
// configuration is never overwritten.
func (m *Mapper[T]) AutoMap(canMap ...func(f reflect.StructField) bool) *Mapper[T] {
	m.autoMap(canMap...)
	return m
}

// NewAuto is the non-generic auto mapper used by the registry for types that
// have no hand-written mapper.
func NewAuto(typ reflect.Type, opts ...Option) (ClassMapper, error) {
	m := newCore(indirect(typ), opts...)
	m.autoMap()
	if err := m.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewPluralizedAuto 复数表名的自动映射
func NewPluralizedAuto(typ reflect.Type, opts ...Option) (ClassMapper, error) {
	return NewAuto(typ, append([]Option{Pluralized()}, opts...)...)
}
