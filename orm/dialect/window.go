package dialect

import (
	"strings"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// 窗口分页（DB2, SQL Server）需要改写已经拼好的 SELECT 语句
// 这里的识别都是基于文本的：引号里面出现 ORDER BY 或者 WHERE 也会被误认
// 这是已知的限制，不打算引入完整的 SQL 解析

const defaultOrderBy = "ORDER BY CURRENT_TIMESTAMP"

// orderByClause 最后一个 ORDER BY 子句，后面如果跟着 WHERE 就截断
// 没有 ORDER BY 返回空字符串
func orderByClause(sql string) string {
	upper := asciiUpper(sql)
	idx := strings.LastIndex(upper, " ORDER BY ")
	if idx == -1 {
		return ""
	}
	res := strings.TrimSpace(sql[idx:])
	whereIdx := strings.Index(asciiUpper(res), " WHERE ")
	if whereIdx == -1 {
		return res
	}
	return strings.TrimSpace(res[:whereIdx])
}

// selectEnd SELECT 关键字结束的位置
func selectEnd(sql string) (int, error) {
	upper := asciiUpper(sql)
	if strings.HasPrefix(upper, "SELECT DISTINCT") {
		return 15, nil
	}
	if strings.HasPrefix(upper, "SELECT") {
		return 6, nil
	}
	return 0, errs.NewErrArgument("sql", "SQL must be a SELECT statement.")
}

// fromStart 和最外层 SELECT 配对的 FROM 的位置，子查询里面的 FROM 跳过
func fromStart(sql string) int {
	selectCount := 0
	fromIndex := 0
	for _, word := range strings.Split(sql, " ") {
		if strings.EqualFold(word, "SELECT") {
			selectCount++
		}
		if strings.EqualFold(word, "FROM") {
			selectCount--
			if selectCount == 0 {
				break
			}
		}
		fromIndex += len(word) + 1
	}
	return fromIndex
}

// columnNames 外层 SELECT 的列名，有别名用别名，否则取最后一段
func columnNames(sql string) ([]string, error) {
	start, err := selectEnd(sql)
	if err != nil {
		return nil, err
	}
	stop := fromStart(sql)
	if stop > len(sql) {
		stop = len(sql)
	}
	if stop < start {
		return nil, errs.NewErrArgument("sql", "SQL must be a SELECT statement.")
	}
	parts := strings.Split(sql[start:stop], ",")
	res := make([]string, 0, len(parts))
	for _, c := range parts {
		if idx := strings.Index(asciiUpper(c), " AS "); idx > 0 {
			res = append(res, strings.TrimSpace(c[idx+4:]))
			continue
		}
		segs := strings.Split(c, ".")
		res = append(res, strings.TrimSpace(segs[len(segs)-1]))
	}
	return res, nil
}

// window 把 ROW_NUMBER() 插入到 SELECT 之后，去掉原来的 ORDER BY
// 返回改写后的 SQL 和外层需要投影的列
func (s standard) window(sql, rowNumber string) (string, []string, error) {
	selectIdx, err := selectEnd(sql)
	if err != nil {
		return "", nil, err
	}
	orderBy := orderByClause(sql)
	if orderBy == "" {
		orderBy = defaultOrderBy
	}
	cols, err := columnNames(sql)
	if err != nil {
		return "", nil, err
	}
	rowCol, err := s.ColumnName("", rowNumber, "")
	if err != nil {
		return "", nil, err
	}
	newSQL := strings.ReplaceAll(sql, " "+orderBy, "")
	selectIdx++
	if selectIdx > len(newSQL) {
		selectIdx = len(newSQL)
	}
	newSQL = newSQL[:selectIdx] + "ROW_NUMBER() OVER(ORDER BY " + orderBy[len("ORDER BY "):] + ") AS " + rowCol + ", " + newSQL[selectIdx:]
	return newSQL, cols, nil
}

// asciiUpper 只转换 ASCII 字母，保证下标和原字符串一致
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// project 外层查询的列，例如 "_TEMP"."Name", "_TEMP"."Age"
func (s standard) project(alias string, cols []string) (string, error) {
	res := make([]string, 0, len(cols))
	for _, c := range cols {
		col, err := s.ColumnName(alias, c, "")
		if err != nil {
			return "", err
		}
		res = append(res, col)
	}
	return strings.Join(res, ", "), nil
}
