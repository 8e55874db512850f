package prometheus

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderi421/sqlmapper/orm"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

type Car struct {
	Id int64
}

func TestMiddlewareBuilder_Build(t *testing.T) {
	reg := prometheus.NewRegistry()
	builder := MiddlewareBuilder{
		Namespace:  "sqlmapper",
		Subsystem:  "orm",
		Name:       "query_duration",
		Help:       "query latency in microseconds",
		Registerer: reg,
	}
	mdl := builder.Build()
	meta, err := mapper.NewAuto(reflect.TypeOf(Car{}))
	require.NoError(t, err)

	ok := mdl(func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
		return &orm.QueryResult{Result: int64(3)}
	})
	fail := mdl(func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
		return &orm.QueryResult{Err: errors.New("boom")}
	})

	qc := &orm.QueryContext{Type: orm.TypeCount, SQL: "SELECT COUNT(*) AS [Total] FROM [Car]", Mapper: meta}
	for i := 0; i < 3; i++ {
		res := ok(context.Background(), qc)
		assert.Equal(t, int64(3), res.Result)
	}
	res := fail(context.Background(), qc)
	assert.EqualError(t, res.Err, "boom")

	cnt, err := testutil.GatherAndCount(reg, "sqlmapper_orm_query_duration")
	require.NoError(t, err)
	// 一个 ok 一个 error
	assert.Equal(t, 2, cnt)
}
