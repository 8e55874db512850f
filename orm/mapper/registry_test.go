package mapper

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

func TestRegistry_Get(t *testing.T) {
	testCases := []struct {
		name      string
		opts      []RegistryOption
		typ       reflect.Type
		wantTable string
		wantErr   error
	}{
		{
			name:      "auto",
			typ:       reflect.TypeOf(Foo{}),
			wantTable: "Foo",
		},
		{
			name:      "pointer",
			typ:       reflect.TypeOf(&Foo{}),
			wantTable: "Foo",
		},
		{
			name:      "pluralized",
			opts:      []RegistryOption{RegistryWithDefault(PluralizedAutoFactory())},
			typ:       reflect.TypeOf(Foo2{}),
			wantTable: "Foo2s",
		},
		{
			name:    "no default",
			opts:    []RegistryOption{RegistryWithDefault(nil)},
			typ:     reflect.TypeOf(Foo{}),
			wantErr: errs.NewErrMapNotFound(reflect.TypeOf(Foo{})),
		},
		{
			name:    "nil type",
			typ:     nil,
			wantErr: errs.NewErrMapNotFound(nil),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRegistry(tc.opts...)
			require.NoError(t, err)
			m, err := r.Get(tc.typ)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantTable, m.TableName())

			// 第二次从缓存中读取
			m2, err := r.Get(tc.typ)
			require.NoError(t, err)
			assert.Same(t, m, m2)
			assert.Equal(t, 1, r.Len())
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r, err := NewRegistry(RegistryWithDefault(nil))
	require.NoError(t, err)
	RegisterMapper[Foo](r, func() *Mapper[Foo] {
		return New[Foo]().Table("foos").AutoMap()
	})

	m, err := r.Get(reflect.TypeOf(Foo{}))
	require.NoError(t, err)
	assert.Equal(t, "foos", m.TableName())

	// 替换已经缓存的映射
	RegisterMapper[Foo](r, func() *Mapper[Foo] {
		return New[Foo]().Table("foo_v2").AutoMap()
	})
	m, err = r.Get(reflect.TypeOf(Foo{}))
	require.NoError(t, err)
	assert.Equal(t, "foo_v2", m.TableName())

	// 注册的 Factory 在 Clear 之后依旧有效
	r.Clear()
	assert.Equal(t, 0, r.Len())
	m, err = r.Get(reflect.TypeOf(Foo{}))
	require.NoError(t, err)
	assert.Equal(t, "foo_v2", m.TableName())
}

func TestRegistry_InvalidMapper(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	RegisterMapper[Foo](r, func() *Mapper[Foo] {
		m := New[Foo]()
		m.MapName("Nope")
		return m
	})
	_, err = r.Get(reflect.TypeOf(Foo{}))
	assert.ErrorIs(t, err, errs.ErrMapping)
	assert.Equal(t, 0, r.Len())

	boom := errors.New("boom")
	r.Register(reflect.TypeOf(Foo2{}), func(reflect.Type) (ClassMapper, error) {
		return nil, boom
	})
	_, err = r.Get(reflect.TypeOf(Foo2{}))
	assert.Equal(t, boom, err)
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	var builds atomic.Int32
	r, err := NewRegistry(RegistryWithDefault(func(typ reflect.Type) (ClassMapper, error) {
		builds.Add(1)
		return NewAuto(typ)
	}))
	require.NoError(t, err)

	var eg errgroup.Group
	results := make([]ClassMapper, 64)
	for i := range results {
		i := i
		eg.Go(func() error {
			m, err := r.Get(reflect.TypeOf(Foo{}))
			results[i] = m
			return err
		})
	}
	require.NoError(t, eg.Wait())
	assert.Equal(t, int32(1), builds.Load())
	for _, m := range results {
		assert.Same(t, results[0], m)
	}

	r.Clear()
	_, err = r.Get(reflect.TypeOf(Foo{}))
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load())
}

func TestRegistry_LRU(t *testing.T) {
	r, err := NewRegistry(RegistryWithCacheSize(2))
	require.NoError(t, err)

	for _, typ := range []reflect.Type{
		reflect.TypeOf(Foo{}),
		reflect.TypeOf(Foo2{}),
		reflect.TypeOf(User{}),
	} {
		_, err = r.Get(typ)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, r.Len())

	// 被淘汰的映射重新构造
	m, err := r.Get(reflect.TypeOf(Foo{}))
	require.NoError(t, err)
	assert.Equal(t, "Foo", m.TableName())
	assert.Equal(t, 2, r.Len())

	_, err = NewRegistry(RegistryWithCacheSize(0))
	assert.NoError(t, err)
}
