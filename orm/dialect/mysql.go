package dialect

import "fmt"

type mysqlDialect struct {
	standard
}

func (m *mysqlDialect) Name() string { return "mysql" }

func (m *mysqlDialect) IdentitySQL(string) (string, error) {
	return "SELECT CONVERT(LAST_INSERT_ID(), SIGNED INTEGER) AS ID", nil
}

func (m *mysqlDialect) PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error) {
	return m.SetSQL(sql, page*resultsPerPage, resultsPerPage, params)
}

// SetSQL LIMIT offset, count
func (m *mysqlDialect) SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error) {
	if err := checkArgs(sql, params); err != nil {
		return "", err
	}
	prefix := string(m.ParameterPrefix())
	if err := params.Add(prefix+"firstResult", firstResult); err != nil {
		return "", err
	}
	if err := params.Add(prefix+"maxResults", maxResults); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s LIMIT %sfirstResult, %smaxResults", sql, prefix, prefix), nil
}
