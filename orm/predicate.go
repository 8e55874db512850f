package orm

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// Operator 比较运算符
type Operator int

const (
	Eq Operator = iota
	Gt
	Ge
	Lt
	Le
	Like
)

// symbol Not 为 true 的时候翻转运算符，而不是在外面包一层 NOT (...)
func (o Operator) symbol(not bool) string {
	switch o {
	case Gt:
		return pick(not, "<=", ">")
	case Ge:
		return pick(not, "<", ">=")
	case Lt:
		return pick(not, ">=", "<")
	case Le:
		return pick(not, ">", "<=")
	case Like:
		return pick(not, "NOT LIKE", "LIKE")
	default:
		return pick(not, "<>", "=")
	}
}

func (o Operator) String() string {
	return o.symbol(false)
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// GroupOperator 组合子条件的方式
type GroupOperator int

const (
	And GroupOperator = iota
	Or
)

func (g GroupOperator) String() string {
	if g == Or {
		return "OR"
	}
	return "AND"
}

// Predicate 代表一个查询条件
// SQL 把条件编译成 WHERE 子句的片段，绑定的参数写入 params
// 同一条语句的所有条件共享一个 params，参数名因此不会冲突
type Predicate interface {
	SQL(g Generator, params *Parameters) (string, error)
}

var (
	_ Predicate = &FieldPredicate{}
	_ Predicate = &PropertyPredicate{}
	_ Predicate = &BetweenPredicate{}
	_ Predicate = &PredicateGroup{}
	_ Predicate = &ExistsPredicate{}
)

// FieldPredicate 字段和值比较
// Value 是 nil 的时候生成 IS NULL，是切片的时候生成 IN
type FieldPredicate struct {
	entity       reflect.Type
	PropertyName string
	Operator     Operator
	Value        any
	Not          bool
}

// Field 例如 Field[User]("Age", Gt, 18)
func Field[T any](property string, op Operator, value any) *FieldPredicate {
	return &FieldPredicate{
		entity:       typeOf[T](),
		PropertyName: property,
		Operator:     op,
		Value:        value,
	}
}

// Negate 取反
func (f *FieldPredicate) Negate() *FieldPredicate {
	f.Not = true
	return f
}

func (f *FieldPredicate) SQL(g Generator, params *Parameters) (string, error) {
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	col, err := columnName(g, f.entity, f.PropertyName)
	if err != nil {
		return "", err
	}
	if isNull(f.Value) {
		return fmt.Sprintf("(%s IS %sNULL)", col, pick(f.Not, "NOT ", "")), nil
	}

	if vals, ok := enumerable(f.Value); ok {
		if f.Operator != Eq {
			return "", errs.NewErrEnumerableOperator()
		}
		if len(vals) == 0 {
			// IN () 是非法的 SQL
			if f.Not {
				return "(" + g.Configuration().Dialect().EmptyExpression() + ")", nil
			}
			return "(1=0)", nil
		}
		names := make([]string, 0, len(vals))
		for _, v := range vals {
			name, err := addParameter(g, params, f.PropertyName, v)
			if err != nil {
				return "", err
			}
			names = append(names, name)
		}
		return fmt.Sprintf("(%s %sIN (%s))", col, pick(f.Not, "NOT ", ""), strings.Join(names, ", ")), nil
	}

	name, err := addParameter(g, params, f.PropertyName, f.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", col, f.Operator.symbol(f.Not), name), nil
}

// PropertyPredicate 比较两个列，列可以属于不同的实体，不产生参数
type PropertyPredicate struct {
	entity        reflect.Type
	entity2       reflect.Type
	PropertyName  string
	PropertyName2 string
	Operator      Operator
	Not           bool
}

// Property 例如 Property[Order, User]("UserId", Eq, "Id")
func Property[T any, T2 any](property string, op Operator, property2 string) *PropertyPredicate {
	return &PropertyPredicate{
		entity:        typeOf[T](),
		entity2:       typeOf[T2](),
		PropertyName:  property,
		PropertyName2: property2,
		Operator:      op,
	}
}

func (p *PropertyPredicate) Negate() *PropertyPredicate {
	p.Not = true
	return p
}

func (p *PropertyPredicate) SQL(g Generator, _ *Parameters) (string, error) {
	left, err := columnName(g, p.entity, p.PropertyName)
	if err != nil {
		return "", err
	}
	right, err := columnName(g, p.entity2, p.PropertyName2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", left, p.Operator.symbol(p.Not), right), nil
}

// BetweenValues 闭区间的两个边界
type BetweenValues struct {
	Value1 any
	Value2 any
}

type BetweenPredicate struct {
	entity       reflect.Type
	PropertyName string
	Value        BetweenValues
	Not          bool
}

func Between[T any](property string, value1, value2 any) *BetweenPredicate {
	return &BetweenPredicate{
		entity:       typeOf[T](),
		PropertyName: property,
		Value:        BetweenValues{Value1: value1, Value2: value2},
	}
}

func (b *BetweenPredicate) Negate() *BetweenPredicate {
	b.Not = true
	return b
}

func (b *BetweenPredicate) SQL(g Generator, params *Parameters) (string, error) {
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	col, err := columnName(g, b.entity, b.PropertyName)
	if err != nil {
		return "", err
	}
	p1, err := addParameter(g, params, b.PropertyName, b.Value.Value1)
	if err != nil {
		return "", err
	}
	p2, err := addParameter(g, params, b.PropertyName, b.Value.Value2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %sBETWEEN %s AND %s)", col, pick(b.Not, "NOT ", ""), p1, p2), nil
}

// PredicateGroup 用 AND 或者 OR 把子条件连起来
type PredicateGroup struct {
	Operator   GroupOperator
	Predicates []Predicate
}

func Group(op GroupOperator, ps ...Predicate) *PredicateGroup {
	return &PredicateGroup{Operator: op, Predicates: ps}
}

// AndGroup 例如 AndGroup(Field[User]("Age", Gt, 18), Field[User]("Name", Like, "Tom%"))
func AndGroup(ps ...Predicate) *PredicateGroup {
	return Group(And, ps...)
}

func OrGroup(ps ...Predicate) *PredicateGroup {
	return Group(Or, ps...)
}

// SQL 空的子条件会被跳过，所有子条件都是空的时候使用方言里永远为真的表达式
func (pg *PredicateGroup) SQL(g Generator, params *Parameters) (string, error) {
	sep := " " + pg.Operator.String() + " "
	var sb strings.Builder
	for _, p := range pg.Predicates {
		if isNull(p) {
			continue
		}
		frag, err := p.SQL(g, params)
		if err != nil {
			return "", err
		}
		if frag == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(frag)
	}
	if sb.Len() == 0 {
		return "(" + g.Configuration().Dialect().EmptyExpression() + ")", nil
	}
	return "(" + sb.String() + ")", nil
}

// ExistsPredicate 子查询 EXISTS (SELECT 1 FROM sub WHERE ...)
type ExistsPredicate struct {
	entity    reflect.Type
	Predicate Predicate
	Not       bool
}

func Exists[T any](p Predicate) *ExistsPredicate {
	return &ExistsPredicate{entity: typeOf[T](), Predicate: p}
}

func (e *ExistsPredicate) Negate() *ExistsPredicate {
	e.Not = true
	return e
}

func (e *ExistsPredicate) SQL(g Generator, params *Parameters) (string, error) {
	if isNull(e.Predicate) {
		return "", errs.NewErrArgumentNil("predicate")
	}
	m, err := classMapper(g, e.entity)
	if err != nil {
		return "", err
	}
	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	sub, err := e.Predicate.SQL(g, params)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%sEXISTS (SELECT 1 FROM %s WHERE %s))", pick(e.Not, "NOT ", ""), table, sub), nil
}

func classMapper(g Generator, typ reflect.Type) (mapper.ClassMapper, error) {
	m, err := g.Configuration().GetMap(typ)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NewErrMapNotFound(typ)
	}
	return m, nil
}

// columnName 条件里面的列名都通过 Generator 生成，不带别名
func columnName(g Generator, typ reflect.Type, property string) (string, error) {
	m, err := classMapper(g, typ)
	if err != nil {
		return "", err
	}
	for _, p := range m.Properties() {
		if p.Name() == property {
			return g.ColumnName(m, p, false)
		}
	}
	return "", errs.NewErrPropertyNotFound(property, typ)
}

// addParameter 参数名是 前缀 + 字段名 + _ + 当前参数个数，例如 @Name_0
func addParameter(g Generator, params *Parameters, property string, val any) (string, error) {
	prefix := g.Configuration().Dialect().ParameterPrefix()
	name := fmt.Sprintf("%c%s_%d", prefix, property, params.Len())
	if err := params.Add(name, val); err != nil {
		return "", err
	}
	return name, nil
}

// isNull 包着 nil 指针的接口也算 nil
func isNull(val any) bool {
	if val == nil {
		return true
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// enumerable 切片和数组展开成 IN 列表，[]byte 和 uuid.UUID 这种字节数组是标量
func enumerable(val any) ([]any, bool) {
	v := reflect.ValueOf(val)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	if v.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	res := make([]any, v.Len())
	for i := range res {
		res[i] = v.Index(i).Interface()
	}
	return res, true
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
