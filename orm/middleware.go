package orm

import (
	"context"

	"github.com/coderi421/sqlmapper/orm/mapper"
)

// QueryContext 中间件的上下文
// SQL 和 Params 已经由 Generator 生成，中间件可以读取也可以篡改
type QueryContext struct {
	// Type 声明查询类型。即 SELECT, COUNT, UPDATE, DELETE 和 INSERT
	Type string

	SQL    string
	Params *Parameters
	// Mapper 有的中间件在拦截时需要表名之类的映射信息
	Mapper mapper.ClassMapper
}

// Table 未加引号的表名，带 schema 的时候是 schema.table
func (qc *QueryContext) Table() string {
	if qc.Mapper == nil {
		return "unknown"
	}
	if s := qc.Mapper.SchemaName(); s != "" {
		return s + "." + qc.Mapper.TableName()
	}
	return qc.Mapper.TableName()
}

type QueryResult struct {
	// Result 在不同的查询里面，类型是不同的
	// Get 里面，这会是单个结果
	// GetList，这会是一个切片
	// Count 是 int64
	// 其它情况下，它会是 sql.Result 类型
	Result any
	Err    error
}

type Middleware func(next Handler) Handler

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult
