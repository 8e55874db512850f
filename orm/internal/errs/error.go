package errs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrArgument 调用方传入了非法参数，修正调用即可，不要重试
	ErrArgument = errors.New("orm: invalid argument")
	// ErrMapping 实体类型或者字段没有映射
	ErrMapping = errors.New("orm: mapping error")

	ErrNoRows       = errors.New("orm: 未找到数据")
	ErrPointerOnly  = errors.New("orm: 只支持一级指针作为输入，例如 *User")
	ErrNoKeyColumns = errors.New("orm: entity has no key properties")

	// ErrMultipleTriggerIdentity 多个 TriggerIdentity 主键
	ErrMultipleTriggerIdentity = &MappingError{Msg: "TriggerIdentity generator cannot be used with multi-column keys"}
)

// ArgumentError names the offending parameter.
type ArgumentError struct {
	Param string
	Msg   string
}

func (e *ArgumentError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("orm: %s", e.Msg)
	}
	return fmt.Sprintf("orm: %s (parameter %q)", e.Msg, e.Param)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgument
}

// MappingError is a configuration error: the entity type or one of its
// properties has no mapping.
type MappingError struct {
	Type     string
	Property string
	Msg      string
}

func (e *MappingError) Error() string {
	return "orm: " + e.Msg
}

func (e *MappingError) Is(target error) bool {
	if target == ErrMapping {
		return true
	}
	// 同一类错误（例如多个 TriggerIdentity）也可以直接比较
	t, ok := target.(*MappingError)
	return ok && t.Msg == e.Msg
}

func NewErrArgumentNil(param string) error {
	return &ArgumentError{Param: param, Msg: param + " cannot be null"}
}

func NewErrArgument(param, msg string) error {
	return &ArgumentError{Param: param, Msg: msg}
}

func NewErrNoColumnsMapped() error {
	return &ArgumentError{Param: "classMap", Msg: "No columns were mapped."}
}

func NewErrEmptySort() error {
	return &ArgumentError{Param: "sort", Msg: "Sort cannot be null or empty."}
}

func NewErrEnumerableOperator() error {
	return &ArgumentError{Param: "Operator", Msg: "Operator must be set to Eq for Enumerable types"}
}

func NewErrPropertyNotInMapping(name string) error {
	return &ArgumentError{Param: "propertyName", Msg: fmt.Sprintf("Could not find '%s' in Mapping.", name)}
}

func NewErrDuplicateParameter(name string) error {
	return &ArgumentError{Param: "parameters", Msg: fmt.Sprintf("parameter %s is already bound", name)}
}

func NewErrMapNotFound(typ reflect.Type) error {
	name := typeName(typ)
	return &MappingError{Type: name, Msg: "Map was not found for " + name}
}

func NewErrPropertyNotFound(prop string, typ reflect.Type) error {
	name := typeName(typ)
	return &MappingError{Type: name, Property: prop, Msg: fmt.Sprintf("%s was not found for %s", prop, name)}
}

func NewErrInvalidProperty(prop, reason string) error {
	return &MappingError{Property: prop, Msg: fmt.Sprintf("'%s' %s", prop, reason)}
}

// NewErrInvalidTagContent 标签内容不合法
func NewErrInvalidTagContent(tag string) error {
	return &MappingError{Msg: fmt.Sprintf("invalid tag content %s", tag)}
}

// NewErrUnknownField 返回代表未知字段的错误
func NewErrUnknownField(name string) error {
	return &MappingError{Property: name, Msg: fmt.Sprintf("unknown field %s", name)}
}

func NewErrUnsupportedIdentity(dialect string) error {
	return fmt.Errorf("orm: %s does not support retrieving the last inserted identity", dialect)
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	return typ.String()
}

// NewErrUnexpectedResult 中间件篡改了查询结果的类型
func NewErrUnexpectedResult(res any) error {
	return fmt.Errorf("orm: 非预期的查询结果类型 %T", res)
}

// NewErrMissingKeyValue 复合主键缺少某一列的值
func NewErrMissingKeyValue(key string) error {
	return &ArgumentError{Param: "id", Msg: fmt.Sprintf("missing value for key property %s", key)}
}
