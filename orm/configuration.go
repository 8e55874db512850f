package orm

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/coderi421/sqlmapper/orm/dialect"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// Parameters 语句的参数，按插入顺序保存
type Parameters = dialect.Parameters

// NewParameters 每条语句使用自己的 Parameters，不要在并发的语句之间共享
func NewParameters() *Parameters {
	return dialect.NewParameters()
}

type ConfigOption func(c *Configuration) error

// Configuration 持有方言和实体映射的缓存
// 不使用包变量，每个 Configuration 都有自己的缓存，方便测试隔离
type Configuration struct {
	dialect  dialect.Dialect
	registry *mapper.Registry

	regOpts []mapper.RegistryOption
	mapOpts []mapper.Option
	// pluralize 默认映射使用复数表名
	pluralize bool
	factory   mapper.Factory
	custom    bool
	mappers   []func(r *mapper.Registry)

	guid func() uuid.UUID
}

// NewConfiguration 默认使用 SQL Server 方言和 uuid v7
func NewConfiguration(opts ...ConfigOption) (*Configuration, error) {
	c := &Configuration{
		dialect: dialect.SQLServer,
		guid:    nextGuid,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	factory := c.factory
	if !c.custom {
		if c.pluralize {
			factory = mapper.PluralizedAutoFactory(c.mapOpts...)
		} else {
			factory = mapper.AutoFactory(c.mapOpts...)
		}
	}
	regOpts := append([]mapper.RegistryOption{mapper.RegistryWithDefault(factory)}, c.regOpts...)
	r, err := mapper.NewRegistry(regOpts...)
	if err != nil {
		return nil, err
	}
	c.registry = r
	for _, reg := range c.mappers {
		reg(r)
	}
	return c, nil
}

// MustNewConfiguration 创建失败会 panic
func MustNewConfiguration(opts ...ConfigOption) *Configuration {
	c, err := NewConfiguration(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func WithDialect(d dialect.Dialect) ConfigOption {
	return func(c *Configuration) error {
		c.dialect = d
		return nil
	}
}

// WithPluralizedTables 没有手写映射的实体使用复数表名，例如 Car -> Cars
func WithPluralizedTables() ConfigOption {
	return func(c *Configuration) error {
		c.pluralize = true
		return nil
	}
}

// WithDefaultMapper 没有手写映射的实体使用 f 构造，nil 表示只允许注册过的实体
func WithDefaultMapper(f mapper.Factory) ConfigOption {
	return func(c *Configuration) error {
		c.factory = f
		c.custom = true
		return nil
	}
}

// WithColumnNamer 默认映射的列名策略，例如 mapper.Underscore
func WithColumnNamer(fn func(string) string) ConfigOption {
	return func(c *Configuration) error {
		c.mapOpts = append(c.mapOpts, mapper.WithColumnNamer(fn))
		return nil
	}
}

// WithMapperCacheSize 限制缓存的映射数量，0 表示不限制
func WithMapperCacheSize(size int) ConfigOption {
	return func(c *Configuration) error {
		c.regOpts = append(c.regOpts, mapper.RegistryWithCacheSize(size))
		return nil
	}
}

// WithMapper 注册手写的映射
func WithMapper[T any](build func() *mapper.Mapper[T]) ConfigOption {
	return func(c *Configuration) error {
		c.mappers = append(c.mappers, func(r *mapper.Registry) {
			mapper.RegisterMapper[T](r, build)
		})
		return nil
	}
}

func WithGuidGenerator(fn func() uuid.UUID) ConfigOption {
	return func(c *Configuration) error {
		c.guid = fn
		return nil
	}
}

func (c *Configuration) Dialect() dialect.Dialect {
	return c.dialect
}

// GetMap 返回类型的映射，第一次访问时构造，之后从缓存读取
func (c *Configuration) GetMap(typ reflect.Type) (mapper.ClassMapper, error) {
	return c.registry.Get(typ)
}

// ClearCache 清空缓存的映射，下次访问时重新构造
func (c *Configuration) ClearCache() {
	c.registry.Clear()
}

// GetNextGuid 新实体的 Guid 主键
func (c *Configuration) GetNextGuid() uuid.UUID {
	return c.guid()
}

// RegisterMapper 在运行中注册手写的映射，会替换已经缓存的映射
func RegisterMapper[T any](c *Configuration, build func() *mapper.Mapper[T]) {
	mapper.RegisterMapper[T](c.registry, build)
}

// MapOf 例如 MapOf[User](cfg)
func MapOf[T any](c *Configuration) (mapper.ClassMapper, error) {
	return c.GetMap(typeOf[T]())
}

// nextGuid 按时间排序的 uuid (v7)
func nextGuid() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
