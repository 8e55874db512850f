package opentelemetry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/coderi421/sqlmapper/orm"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

type Car struct {
	Id int64
}

func TestMiddlewareBuilder_Build(t *testing.T) {
	meta, err := mapper.NewAuto(reflect.TypeOf(Car{}))
	require.NoError(t, err)

	testCases := []struct {
		name       string
		err        error
		wantStatus codes.Code
	}{
		{
			name:       "ok",
			wantStatus: codes.Unset,
		},
		{
			name:       "error",
			err:        errors.New("boom"),
			wantStatus: codes.Error,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			mdl := MiddlewareBuilder{Tracer: tp.Tracer("test")}.Build()

			var inner trace.SpanContext
			h := mdl(func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
				inner = trace.SpanContextFromContext(ctx)
				return &orm.QueryResult{Err: tc.err}
			})
			_ = h(context.Background(), &orm.QueryContext{
				Type:   orm.TypeSelect,
				SQL:    "SELECT [Car].[Id] FROM [Car]",
				Mapper: meta,
			})

			spans := sr.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, "SELECT Car", span.Name())
			assert.Equal(t, trace.SpanKindClient, span.SpanKind())
			assert.Equal(t, tc.wantStatus, span.Status().Code)
			assert.Contains(t, span.Attributes(), attribute.String("db.statement", "SELECT [Car].[Id] FROM [Car]"))
			assert.Contains(t, span.Attributes(), attribute.String("db.sql.table", "Car"))
			// 下游拿到的是新的 span
			assert.Equal(t, span.SpanContext().SpanID(), inner.SpanID())
		})
	}
}
