package dialect

import (
	"strconv"
	"strings"
)

type sqlServerDialect struct {
	standard
}

func (s *sqlServerDialect) Name() string { return "sqlserver" }

func (s *sqlServerDialect) IdentitySQL(string) (string, error) {
	return "SELECT CAST(SCOPE_IDENTITY() AS BIGINT) AS [Id]", nil
}

func (s *sqlServerDialect) PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error) {
	return s.SetSQL(sql, page*resultsPerPage+1, resultsPerPage, params)
}

// SetSQL
//
//	SELECT TOP(10) [_proj].[Name] FROM (SELECT ROW_NUMBER() OVER(ORDER BY [Name]) AS [_row_number], [Name] FROM [Foo]) [_proj]
//	WHERE [_proj].[_row_number] >= @_pageStartRow ORDER BY [_proj].[_row_number]
func (s *sqlServerDialect) SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error) {
	if err := checkArgs(sql, params); err != nil {
		return "", err
	}
	newSQL, cols, err := s.window(sql, "_row_number")
	if err != nil {
		return "", err
	}
	projected, err := s.project("_proj", cols)
	if err != nil {
		return "", err
	}
	rowCol, err := s.ColumnName("_proj", "_row_number", "")
	if err != nil {
		return "", err
	}
	prefix := string(s.ParameterPrefix())
	if err = params.Add(prefix+"_pageStartRow", firstResult); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT TOP(")
	sb.WriteString(strconv.Itoa(maxResults))
	sb.WriteString(") ")
	sb.WriteString(strings.TrimSpace(projected))
	sb.WriteString(" FROM (")
	sb.WriteString(newSQL)
	sb.WriteString(") [_proj] WHERE ")
	sb.WriteString(rowCol)
	sb.WriteString(" >= ")
	sb.WriteString(prefix + "_pageStartRow ORDER BY ")
	sb.WriteString(rowCol)
	return sb.String(), nil
}
