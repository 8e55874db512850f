package dialect

import "strings"

// sqliteDialect 列名不带表名前缀
type sqliteDialect struct {
	standard
}

func (s *sqliteDialect) Name() string { return "sqlite3" }

func (s *sqliteDialect) IdentitySQL(string) (string, error) {
	return "SELECT LAST_INSERT_ROWID() AS [Id]", nil
}

func (s *sqliteDialect) PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error) {
	return s.SetSQL(sql, page*resultsPerPage, resultsPerPage, params)
}

func (s *sqliteDialect) SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error) {
	if err := checkArgs(sql, params); err != nil {
		return "", err
	}
	prefix := string(s.ParameterPrefix())
	if err := params.Add(prefix+"Offset", firstResult); err != nil {
		return "", err
	}
	if err := params.Add(prefix+"Count", maxResults); err != nil {
		return "", err
	}
	return sql + " LIMIT " + prefix + "Offset, " + prefix + "Count", nil
}

func (s *sqliteDialect) ColumnName(_, column, alias string) (string, error) {
	if strings.TrimSpace(column) == "" {
		return "", emptyName("columnName")
	}
	res := s.QuoteString(column)
	if alias != "" {
		res += " AS " + s.QuoteString(alias)
	}
	return res, nil
}
