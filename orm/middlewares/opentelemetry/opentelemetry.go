package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/coderi421/sqlmapper/orm"
)

const instrumentationName = "github.com/coderi421/sqlmapper/orm/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			// span name 例如 SELECT Car
			ctx, span := m.Tracer.Start(ctx, qc.Type+" "+qc.Table(), trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			span.SetAttributes(
				attribute.String("db.operation", qc.Type),
				attribute.String("db.sql.table", qc.Table()),
				attribute.String("db.statement", qc.SQL),
			)
			res := next(ctx, qc)
			if res != nil && res.Err != nil {
				span.RecordError(res.Err)
				span.SetStatus(codes.Error, res.Err.Error())
			}
			return res
		}
	}
}
