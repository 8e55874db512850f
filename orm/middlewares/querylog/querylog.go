package querylog

import (
	"context"
	"log/slog"
	"time"

	"github.com/coderi421/sqlmapper/orm"
)

type MiddlewareBuilder struct {
	logFunc func(query string, args []any)
	logger  *slog.Logger
}

func NewBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

// LogFunc 自定义输出，设置之后不再使用 slog
func (m *MiddlewareBuilder) LogFunc(fn func(query string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

// Logger 默认使用 slog.Default()
func (m *MiddlewareBuilder) Logger(l *slog.Logger) *MiddlewareBuilder {
	m.logger = l
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			args := Args(qc.Params)
			if m.logFunc != nil {
				m.logFunc(qc.SQL, args)
				return next(ctx, qc)
			}

			start := time.Now()
			res := next(ctx, qc)
			attrs := []slog.Attr{
				slog.String("type", qc.Type),
				slog.String("table", qc.Table()),
				slog.String("sql", qc.SQL),
				slog.Any("args", args),
				slog.Duration("elapsed", time.Since(start)),
			}
			level := slog.LevelDebug
			if res != nil && res.Err != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.Any("error", res.Err))
			}
			logger := m.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.LogAttrs(ctx, level, "orm query", attrs...)
			return res
		}
	}
}

// Args 按绑定顺序返回参数值
func Args(params *orm.Parameters) []any {
	if params == nil {
		return nil
	}
	names := params.Names()
	res := make([]any, 0, len(names))
	for _, n := range names {
		v, _ := params.Get(n)
		res = append(res, v)
	}
	return res
}
