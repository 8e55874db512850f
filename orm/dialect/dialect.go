package dialect

import (
	"strings"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

var (
	MySQL      Dialect = &mysqlDialect{standard: newStandard('`', '`')}
	PostgreSQL Dialect = newPostgres()
	DB2        Dialect = &db2Dialect{standard: newStandard('"', '"')}
	SQLServer  Dialect = &sqlServerDialect{standard: newStandard('[', ']')}
	SQLite     Dialect = &sqliteDialect{standard: newStandard('"', '"')}
	Oracle     Dialect = newOracle()
)

// Dialect 封装不同数据库在引号、分页、取自增主键上的差异
type Dialect interface {
	// Name 方言的名字，例如 mysql
	Name() string

	OpenQuote() byte
	CloseQuote() byte
	BatchSeparator() string
	SupportsMultipleStatements() bool
	ParameterPrefix() byte
	// EmptyExpression 永远为真的表达式
	EmptyExpression() string

	// TableName 返回带引号的表名，schema 和 alias 可以为空
	TableName(schema, table, alias string) (string, error)
	// ColumnName 返回带引号的列名，prefix 和 alias 可以为空
	ColumnName(prefix, column, alias string) (string, error)

	// IdentitySQL 获取最后插入的自增主键的语句
	IdentitySQL(table string) (string, error)

	// PagingSQL rewrites an assembled SELECT into one page of results and
	// appends the bind parameters it needs to params.
	PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error)
	// SetSQL is PagingSQL addressed by an absolute first result and a count.
	SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error)

	IsQuoted(value string) bool
	QuoteString(value string) string
	UnQuoteString(value string) string
}

// ByName 根据名字查找方言，用于从配置文件加载
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	case "db2":
		return DB2, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "oracle":
		return Oracle, nil
	default:
		return nil, errs.NewErrArgument("dialect", "unknown dialect "+name)
	}
}

// standard 所有方言共享的默认实现，各个方言只覆盖不一样的部分
type standard struct {
	open, close byte
	// quote 覆盖默认的引号规则，例如 PostgreSQL 转小写
	quote func(s standard, value string) string
}

func newStandard(open, close byte) standard {
	return standard{open: open, close: close}
}

func (s standard) OpenQuote() byte                  { return s.open }
func (s standard) CloseQuote() byte                 { return s.close }
func (s standard) BatchSeparator() string           { return ";\n" }
func (s standard) SupportsMultipleStatements() bool { return true }
func (s standard) ParameterPrefix() byte            { return '@' }
func (s standard) EmptyExpression() string          { return "1=1" }

func (s standard) TableName(schema, table, alias string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", emptyName("tableName")
	}
	var sb strings.Builder
	if schema != "" {
		sb.WriteString(s.QuoteString(schema))
		sb.WriteByte('.')
	}
	sb.WriteString(s.QuoteString(table))
	if alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(s.QuoteString(alias))
	}
	return sb.String(), nil
}

func (s standard) ColumnName(prefix, column, alias string) (string, error) {
	if strings.TrimSpace(column) == "" {
		return "", emptyName("columnName")
	}
	var sb strings.Builder
	if prefix != "" {
		sb.WriteString(s.QuoteString(prefix))
		sb.WriteByte('.')
	}
	sb.WriteString(s.QuoteString(column))
	if alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(s.QuoteString(alias))
	}
	return sb.String(), nil
}

func (s standard) IsQuoted(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	return v[0] == s.open && v[len(v)-1] == s.close
}

// QuoteString 已经有引号的和 * 原样返回
func (s standard) QuoteString(value string) string {
	if s.IsQuoted(value) || value == "*" {
		return value
	}
	if s.quote != nil {
		return s.quote(s, value)
	}
	return string(s.open) + strings.TrimSpace(value) + string(s.close)
}

func (s standard) UnQuoteString(value string) string {
	if !s.IsQuoted(value) {
		return value
	}
	v := strings.TrimSpace(value)
	return v[1 : len(v)-1]
}

func checkArgs(sql string, params *Parameters) error {
	if sql == "" {
		return errs.NewErrArgumentNil("sql")
	}
	if params == nil {
		return errs.NewErrArgumentNil("parameters")
	}
	return nil
}

func emptyName(param string) error {
	return errs.NewErrArgument(param, param+" cannot be null or empty")
}
