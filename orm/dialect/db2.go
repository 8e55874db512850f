package dialect

import "strings"

type db2Dialect struct {
	standard
}

func (d *db2Dialect) Name() string { return "db2" }

func (d *db2Dialect) IdentitySQL(string) (string, error) {
	return `SELECT CAST(IDENTITY_VAL_LOCAL() AS BIGINT) AS "ID" FROM SYSIBM.SYSDUMMY1`, nil
}

// PagingSQL DB2 的行号从 1 开始
func (d *db2Dialect) PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error) {
	return d.SetSQL(sql, (page-1)*resultsPerPage+1, resultsPerPage, params)
}

// SetSQL 外层查询按照 "_ROW_NUMBER" 取 [firstResult, firstResult+maxResults-1]
func (d *db2Dialect) SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error) {
	if err := checkArgs(sql, params); err != nil {
		return "", err
	}
	newSQL, cols, err := d.window(sql, "_ROW_NUMBER")
	if err != nil {
		return "", err
	}
	projected, err := d.project("_TEMP", cols)
	if err != nil {
		return "", err
	}
	rowCol, err := d.ColumnName("_TEMP", "_ROW_NUMBER", "")
	if err != nil {
		return "", err
	}
	prefix := string(d.ParameterPrefix())
	if err = params.Add(prefix+"_pageStartRow", firstResult); err != nil {
		return "", err
	}
	if err = params.Add(prefix+"_pageEndRow", firstResult+maxResults-1); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.TrimSpace(projected))
	sb.WriteString(" FROM (")
	sb.WriteString(newSQL)
	sb.WriteString(`) AS "_TEMP" WHERE `)
	sb.WriteString(rowCol)
	sb.WriteString(" BETWEEN ")
	sb.WriteString(prefix + "_pageStartRow AND ")
	sb.WriteString(prefix + "_pageEndRow")
	return sb.String(), nil
}
