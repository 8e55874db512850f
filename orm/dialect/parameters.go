package dialect

import (
	"database/sql"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// Parameters 按插入顺序保存参数名和参数值
// 同一个语句的所有谓词共享一个 Parameters，不同语句不要共享
type Parameters struct {
	names  []string
	values map[string]any
}

func NewParameters() *Parameters {
	return &Parameters{values: make(map[string]any, 4)}
}

// Add appends a bound value. Names are unique within one statement.
// The zero value is ready to use.
func (p *Parameters) Add(name string, val any) error {
	if _, ok := p.values[name]; ok {
		return errs.NewErrDuplicateParameter(name)
	}
	if p.values == nil {
		p.values = make(map[string]any, 4)
	}
	p.names = append(p.names, name)
	p.values[name] = val
	return nil
}

func (p *Parameters) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *Parameters) Len() int {
	return len(p.names)
}

// Names 返回参数名的副本
func (p *Parameters) Names() []string {
	res := make([]string, len(p.names))
	copy(res, p.names)
	return res
}

// NamedArgs converts the parameters to database/sql named arguments. The
// dialect prefix is stripped from each name.
func (p *Parameters) NamedArgs() []any {
	res := make([]any, 0, len(p.names))
	for _, n := range p.names {
		res = append(res, sql.Named(trimPrefix(n), p.values[n]))
	}
	return res
}

func trimPrefix(name string) string {
	if name == "" {
		return name
	}
	switch name[0] {
	case '@', ':', '$', '?':
		return name[1:]
	}
	return name
}
