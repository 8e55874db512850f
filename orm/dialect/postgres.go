package dialect

import (
	"strings"

	"github.com/lib/pq"
)

// postgresDialect 标识符统一转成小写，列名不带表名前缀
type postgresDialect struct {
	standard
}

func newPostgres() *postgresDialect {
	s := newStandard('"', '"')
	s.quote = func(_ standard, value string) string {
		return strings.ToLower(pq.QuoteIdentifier(strings.TrimSpace(value)))
	}
	return &postgresDialect{standard: s}
}

func (p *postgresDialect) Name() string { return "postgres" }

func (p *postgresDialect) IdentitySQL(string) (string, error) {
	return "SELECT LASTVAL() AS Id", nil
}

func (p *postgresDialect) PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error) {
	return p.SetSQL(sql, page*resultsPerPage, resultsPerPage, params)
}

func (p *postgresDialect) SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error) {
	if err := checkArgs(sql, params); err != nil {
		return "", err
	}
	prefix := string(p.ParameterPrefix())
	if err := params.Add(prefix+"maxResults", maxResults); err != nil {
		return "", err
	}
	if err := params.Add(prefix+"pageStartRowNbr", firstResult); err != nil {
		return "", err
	}
	return sql + " LIMIT " + prefix + "maxResults OFFSET " + prefix + "pageStartRowNbr", nil
}

func (p *postgresDialect) TableName(schema, table, alias string) (string, error) {
	res, err := p.standard.TableName(schema, table, alias)
	return strings.ToLower(res), err
}

// ColumnName 忽略 prefix
func (p *postgresDialect) ColumnName(_, column, alias string) (string, error) {
	res, err := p.standard.ColumnName("", column, alias)
	return strings.ToLower(res), err
}
