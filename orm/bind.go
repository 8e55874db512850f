package orm

import (
	"strconv"
	"strings"

	"github.com/coderi421/sqlmapper/orm/dialect"
)

// BindStyle 参数传给驱动的方式
// 生成的 SQL 统一使用方言的前缀命名参数，例如 @Name_0
// 不支持命名参数的驱动需要把名字改写成占位符
type BindStyle int

const (
	// BindNamed 使用 sql.Named，SQL 不变
	BindNamed BindStyle = iota
	// BindQuestion 改写成 ?，例如 MySQL
	BindQuestion
	// BindDollar 改写成 $1 $2，例如 PostgreSQL
	BindDollar
)

func (b BindStyle) String() string {
	switch b {
	case BindQuestion:
		return "question"
	case BindDollar:
		return "dollar"
	default:
		return "named"
	}
}

func defaultBindStyle(d dialect.Dialect) BindStyle {
	switch d.Name() {
	case dialect.MySQL.Name():
		return BindQuestion
	case dialect.PostgreSQL.Name():
		return BindDollar
	default:
		return BindNamed
	}
}

// bind 返回交给 database/sql 的语句和参数
func (b BindStyle) bind(prefix byte, query string, params *Parameters) (string, []any) {
	if params == nil || params.Len() == 0 {
		return query, nil
	}
	if b == BindNamed {
		return query, params.NamedArgs()
	}
	return rebind(b, prefix, query, params)
}

// rebind 扫描引号之外以 prefix 开头的标识符，存在于 params 中的改写成占位符
// 同一个参数出现多次的时候，? 会重复传值，$n 会复用编号
func rebind(b BindStyle, prefix byte, query string, params *Parameters) (string, []any) {
	var sb strings.Builder
	sb.Grow(len(query))
	args := make([]any, 0, params.Len())
	seen := make(map[string]int, params.Len())

	var closing byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		if closing != 0 {
			sb.WriteByte(c)
			if c == closing {
				closing = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			closing = c
			sb.WriteByte(c)
			continue
		case '[':
			closing = ']'
			sb.WriteByte(c)
			continue
		}
		if c != prefix {
			sb.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(query) && isIdentByte(query[j]) {
			j++
		}
		name := query[i:j]
		val, ok := params.Get(name)
		if j == i+1 || !ok {
			// 例如 MySQL 的 @@identity
			sb.WriteString(name)
			i = j - 1
			continue
		}
		i = j - 1

		if b == BindDollar {
			idx, ok := seen[name]
			if !ok {
				args = append(args, val)
				idx = len(args)
				seen[name] = idx
			}
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(idx))
			continue
		}
		args = append(args, val)
		sb.WriteByte('?')
	}
	return sb.String(), args
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
