package dialect

import (
	"strings"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// oracleDialect 不支持一次执行多条语句，也取不到最后插入的自增主键
// 没有引号的标识符转成大写，用反引号包起来的标识符保留大小写
type oracleDialect struct {
	standard
}

func newOracle() *oracleDialect {
	s := newStandard('"', '"')
	s.quote = func(s standard, value string) string {
		v := strings.TrimSpace(value)
		if len(v) >= 2 && v[0] == '`' && v[len(v)-1] == '`' {
			return string(s.open) + v[1:len(v)-1] + string(s.close)
		}
		return strings.ToUpper(v)
	}
	return &oracleDialect{standard: s}
}

func (o *oracleDialect) Name() string                     { return "oracle" }
func (o *oracleDialect) ParameterPrefix() byte            { return ':' }
func (o *oracleDialect) SupportsMultipleStatements() bool { return false }

func (o *oracleDialect) IdentitySQL(string) (string, error) {
	return "", errs.NewErrUnsupportedIdentity(o.Name())
}

func (o *oracleDialect) PagingSQL(sql string, page, resultsPerPage int, params *Parameters) (string, error) {
	return o.SetSQL(sql, page*resultsPerPage, resultsPerPage, params)
}

// SetSQL 用两层 ROWNUM 子查询截取 (firstResult, firstResult+maxResults]
func (o *oracleDialect) SetSQL(sql string, firstResult, maxResults int, params *Parameters) (string, error) {
	if err := checkArgs(sql, params); err != nil {
		return "", err
	}
	if err := params.Add(":topLimit", firstResult+maxResults); err != nil {
		return "", err
	}
	if err := params.Add(":toSkip", firstResult); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(sql) + 160)
	sb.WriteString(`SELECT * FROM (SELECT "_ss_1".*, ROWNUM RNUM FROM (`)
	sb.WriteString(sql)
	sb.WriteString(`) "_ss_1" WHERE ROWNUM <= :topLimit) "_ss_2" WHERE "_ss_2".RNUM > :toSkip`)
	return sb.String(), nil
}
