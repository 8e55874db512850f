package orm

import (
	"strings"

	"github.com/samber/lo"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// Sort ORDER BY 的一列
type Sort struct {
	PropertyName string
	Ascending    bool
}

// Asc 升序
func Asc(property string) Sort {
	return Sort{PropertyName: property, Ascending: true}
}

// Desc 降序
func Desc(property string) Sort {
	return Sort{PropertyName: property}
}

// Generator 根据 ClassMapper 和 Predicate 生成完整的 SQL
// 所有的列名和表名都经过 Generator，所以引号规则只存在于 Dialect 中
type Generator interface {
	Configuration() *Configuration

	Select(m mapper.ClassMapper, p Predicate, sort []Sort, params *Parameters) (string, error)
	SelectPaged(m mapper.ClassMapper, p Predicate, sort []Sort, page, resultsPerPage int, params *Parameters) (string, error)
	SelectSet(m mapper.ClassMapper, p Predicate, sort []Sort, firstResult, maxResults int, params *Parameters) (string, error)
	Count(m mapper.ClassMapper, p Predicate, params *Parameters) (string, error)

	Insert(m mapper.ClassMapper) (string, error)
	Update(m mapper.ClassMapper, p Predicate, params *Parameters, ignoreAllKeyProperties bool) (string, error)
	Delete(m mapper.ClassMapper, p Predicate, params *Parameters) (string, error)

	IdentitySQL(m mapper.ClassMapper) (string, error)
	TableName(m mapper.ClassMapper) (string, error)
	// ColumnName 只有 includeAlias 为 true 并且列名和字段名不一样的时候才带别名
	ColumnName(m mapper.ClassMapper, prop mapper.PropertyMap, includeAlias bool) (string, error)
	// ColumnNameOf 按字段名查找，忽略大小写
	ColumnNameOf(m mapper.ClassMapper, propertyName string, includeAlias bool) (string, error)
	SupportsMultipleStatements() bool
	BuildSelectColumns(m mapper.ClassMapper) (string, error)
}

var _ Generator = &generator{}

type generator struct {
	cfg *Configuration
}

func NewGenerator(cfg *Configuration) Generator {
	return &generator{cfg: cfg}
}

func (g *generator) Configuration() *Configuration {
	return g.cfg
}

// Select SELECT cols FROM table [WHERE ...] [ORDER BY ...]
func (g *generator) Select(m mapper.ClassMapper, p Predicate, sort []Sort, params *Parameters) (string, error) {
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	var sb strings.Builder
	if err := g.buildSelect(&sb, m, p, params); err != nil {
		return "", err
	}
	if len(sort) > 0 {
		if err := g.buildOrderBy(&sb, m, sort); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// SelectPaged 分页必须指定排序，否则结果不确定
func (g *generator) SelectPaged(m mapper.ClassMapper, p Predicate, sort []Sort, page, resultsPerPage int, params *Parameters) (string, error) {
	inner, err := g.sortedSelect(m, p, sort, params)
	if err != nil {
		return "", err
	}
	return g.cfg.Dialect().PagingSQL(inner, page, resultsPerPage, params)
}

func (g *generator) SelectSet(m mapper.ClassMapper, p Predicate, sort []Sort, firstResult, maxResults int, params *Parameters) (string, error) {
	inner, err := g.sortedSelect(m, p, sort, params)
	if err != nil {
		return "", err
	}
	return g.cfg.Dialect().SetSQL(inner, firstResult, maxResults, params)
}

func (g *generator) sortedSelect(m mapper.ClassMapper, p Predicate, sort []Sort, params *Parameters) (string, error) {
	if len(sort) == 0 {
		return "", errs.NewErrEmptySort()
	}
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	var sb strings.Builder
	if err := g.buildSelect(&sb, m, p, params); err != nil {
		return "", err
	}
	if err := g.buildOrderBy(&sb, m, sort); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *generator) Count(m mapper.ClassMapper, p Predicate, params *Parameters) (string, error) {
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	d := g.cfg.Dialect()
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) AS ")
	sb.WriteByte(d.OpenQuote())
	sb.WriteString("Total")
	sb.WriteByte(d.CloseQuote())
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	if err = g.buildWhere(&sb, p, params); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Insert 自增主键、触发器生成的主键、忽略的和只读的字段不会插入
// 参数名就是 前缀 + 字段名，值由调用方按字段名绑定
func (g *generator) Insert(m mapper.ClassMapper) (string, error) {
	props := m.Properties()
	columns := lo.Filter(props, func(p mapper.PropertyMap, _ int) bool {
		return insertable(p)
	})
	if len(columns) == 0 {
		return "", errs.NewErrNoColumnsMapped()
	}
	triggers := lo.Filter(props, func(p mapper.PropertyMap, _ int) bool {
		return p.KeyType() == mapper.TriggerIdentity
	})
	if len(triggers) > 1 {
		return "", errs.ErrMultipleTriggerIdentity
	}

	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	prefix := string(g.cfg.Dialect().ParameterPrefix())
	cols := make([]string, 0, len(columns))
	for _, p := range columns {
		col, err := g.ColumnName(m, p, false)
		if err != nil {
			return "", err
		}
		cols = append(cols, col)
	}
	vals := lo.Map(columns, func(p mapper.PropertyMap, _ int) string {
		return prefix + p.Name()
	})

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(vals, ", "))
	sb.WriteByte(')')

	if len(triggers) == 1 {
		// 例如 Oracle 通过触发器生成主键
		col, err := g.ColumnName(m, triggers[0], false)
		if err != nil {
			return "", err
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(col)
		sb.WriteString(" INTO ")
		sb.WriteString(prefix)
		sb.WriteString("IdOutParam")
	}
	return sb.String(), nil
}

// Update UPDATE table SET col = @Name, ... WHERE ...
func (g *generator) Update(m mapper.ClassMapper, p Predicate, params *Parameters, ignoreAllKeyProperties bool) (string, error) {
	if isNull(p) {
		return "", errs.NewErrArgumentNil("predicate")
	}
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	columns := lo.Filter(m.Properties(), func(pm mapper.PropertyMap, _ int) bool {
		return updatable(pm, ignoreAllKeyProperties)
	})
	if len(columns) == 0 {
		return "", errs.NewErrNoColumnsMapped()
	}

	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	prefix := string(g.cfg.Dialect().ParameterPrefix())
	sets := make([]string, 0, len(columns))
	for _, pm := range columns {
		col, err := g.ColumnName(m, pm, false)
		if err != nil {
			return "", err
		}
		sets = append(sets, col+" = "+prefix+pm.Name())
	}
	where, err := p.SQL(g, params)
	if err != nil {
		return "", err
	}
	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE " + where, nil
}

func (g *generator) Delete(m mapper.ClassMapper, p Predicate, params *Parameters) (string, error) {
	if isNull(p) {
		return "", errs.NewErrArgumentNil("predicate")
	}
	if params == nil {
		return "", errs.NewErrArgumentNil("parameters")
	}
	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	where, err := p.SQL(g, params)
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + table + " WHERE " + where, nil
}

func (g *generator) IdentitySQL(m mapper.ClassMapper) (string, error) {
	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	return g.cfg.Dialect().IdentitySQL(table)
}

func (g *generator) TableName(m mapper.ClassMapper) (string, error) {
	if m == nil {
		return "", errs.NewErrArgumentNil("classMap")
	}
	return g.cfg.Dialect().TableName(m.SchemaName(), m.TableName(), "")
}

func (g *generator) ColumnName(m mapper.ClassMapper, prop mapper.PropertyMap, includeAlias bool) (string, error) {
	var alias string
	if includeAlias && prop.ColumnName() != prop.Name() {
		alias = prop.Name()
	}
	table, err := g.TableName(m)
	if err != nil {
		return "", err
	}
	return g.cfg.Dialect().ColumnName(table, prop.ColumnName(), alias)
}

func (g *generator) ColumnNameOf(m mapper.ClassMapper, propertyName string, includeAlias bool) (string, error) {
	if m == nil {
		return "", errs.NewErrArgumentNil("classMap")
	}
	prop, ok := lo.Find(m.Properties(), func(p mapper.PropertyMap) bool {
		return strings.EqualFold(p.Name(), propertyName)
	})
	if !ok {
		return "", errs.NewErrPropertyNotInMapping(propertyName)
	}
	return g.ColumnName(m, prop, includeAlias)
}

func (g *generator) SupportsMultipleStatements() bool {
	return g.cfg.Dialect().SupportsMultipleStatements()
}

// BuildSelectColumns 所有没有被忽略的字段，按声明顺序，带别名
func (g *generator) BuildSelectColumns(m mapper.ClassMapper) (string, error) {
	if m == nil {
		return "", errs.NewErrArgumentNil("classMap")
	}
	cols := make([]string, 0, 8)
	for _, p := range m.Properties() {
		if p.Ignored() {
			continue
		}
		col, err := g.ColumnName(m, p, true)
		if err != nil {
			return "", err
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return "", errs.NewErrNoColumnsMapped()
	}
	return strings.Join(cols, ", "), nil
}

func (g *generator) buildSelect(sb *strings.Builder, m mapper.ClassMapper, p Predicate, params *Parameters) error {
	cols, err := g.BuildSelectColumns(m)
	if err != nil {
		return err
	}
	table, err := g.TableName(m)
	if err != nil {
		return err
	}
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	return g.buildWhere(sb, p, params)
}

func (g *generator) buildWhere(sb *strings.Builder, p Predicate, params *Parameters) error {
	if isNull(p) {
		return nil
	}
	where, err := p.SQL(g, params)
	if err != nil {
		return err
	}
	if where == "" {
		return nil
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(where)
	return nil
}

func (g *generator) buildOrderBy(sb *strings.Builder, m mapper.ClassMapper, sort []Sort) error {
	sb.WriteString(" ORDER BY ")
	for i, s := range sort {
		if i > 0 {
			sb.WriteString(", ")
		}
		col, err := g.ColumnNameOf(m, s.PropertyName, false)
		if err != nil {
			return err
		}
		sb.WriteString(col)
		if s.Ascending {
			sb.WriteString(" ASC")
		} else {
			sb.WriteString(" DESC")
		}
	}
	return nil
}

// insertable 自增主键、触发器生成的主键、忽略的和只读的字段不会插入
func insertable(p mapper.PropertyMap) bool {
	return !(p.Ignored() || p.ReadOnly() || p.KeyType() == mapper.Identity || p.KeyType() == mapper.TriggerIdentity)
}

func updatable(p mapper.PropertyMap, ignoreAllKeyProperties bool) bool {
	if p.Ignored() || p.ReadOnly() {
		return false
	}
	if ignoreAllKeyProperties {
		return p.KeyType() == mapper.NotAKey
	}
	return p.KeyType() != mapper.Identity && p.KeyType() != mapper.Assigned
}
