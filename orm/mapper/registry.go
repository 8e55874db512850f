package mapper

import (
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// Factory 构造某个类型的映射
type Factory func(typ reflect.Type) (ClassMapper, error)

// AutoFactory 没有手写映射的时候使用的默认约定
func AutoFactory(opts ...Option) Factory {
	return func(typ reflect.Type) (ClassMapper, error) {
		return NewAuto(typ, opts...)
	}
}

// PluralizedAutoFactory 复数表名的默认约定
func PluralizedAutoFactory(opts ...Option) Factory {
	return func(typ reflect.Type) (ClassMapper, error) {
		return NewPluralizedAuto(typ, opts...)
	}
}

type RegistryOption func(r *Registry) error

// RegistryWithDefault 设置默认的 Factory，nil 表示只有注册过的类型才能使用
func RegistryWithDefault(f Factory) RegistryOption {
	return func(r *Registry) error {
		r.fallback = f
		return nil
	}
}

// RegistryWithCacheSize 使用 LRU 限制缓存的映射数量，被淘汰的映射在下次访问的时候重新构造
func RegistryWithCacheSize(size int) RegistryOption {
	return func(r *Registry) error {
		if size <= 0 {
			r.cache = newMapCache()
			return nil
		}
		c, err := newLRUCache(size)
		if err != nil {
			return err
		}
		r.cache = c
		return nil
	}
}

// Registry 缓存每个类型的 ClassMapper
//
// 这种包变量对测试不友好，缺乏隔离，所以 Registry 属于某一个 Configuration
//
// 构造是双重检查的：读锁下命中直接返回，否则拿写锁再检查一次，
// 保证同一个类型只构造一次
type Registry struct {
	lock      sync.RWMutex
	cache     cache
	factories map[reflect.Type]Factory
	fallback  Factory
}

func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		cache:     newMapCache(),
		factories: make(map[reflect.Type]Factory, 8),
		fallback:  AutoFactory(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register binds a hand-written mapper factory to typ. The factory survives
// Clear, so the mapper is rebuilt from it on the next Get.
func (r *Registry) Register(typ reflect.Type, f Factory) {
	typ = indirect(typ)
	r.lock.Lock()
	defer r.lock.Unlock()
	r.factories[typ] = f
	r.cache.remove(typ)
}

// Get 查找 typ 的映射，没有就构造并缓存
func (r *Registry) Get(typ reflect.Type) (ClassMapper, error) {
	typ = indirect(typ)
	if typ == nil {
		return nil, errs.NewErrMapNotFound(typ)
	}
	r.lock.RLock()
	m, ok := r.cache.get(typ)
	r.lock.RUnlock()
	if ok {
		return m, nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if m, ok = r.cache.get(typ); ok {
		return m, nil
	}
	f, ok := r.factories[typ]
	if !ok {
		f = r.fallback
	}
	if f == nil {
		return nil, errs.NewErrMapNotFound(typ)
	}
	m, err := f(typ)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NewErrMapNotFound(typ)
	}
	if v, ok := m.(interface{ Err() error }); ok && v.Err() != nil {
		return nil, v.Err()
	}
	r.cache.add(typ, m)
	return m, nil
}

// Clear 清空缓存，注册过的 Factory 保留
func (r *Registry) Clear() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.cache.purge()
}

// Len 当前缓存了多少个映射
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.cache.len()
}

type cache interface {
	get(typ reflect.Type) (ClassMapper, bool)
	add(typ reflect.Type, m ClassMapper)
	remove(typ reflect.Type)
	purge()
	len() int
}

// mapCache 由 Registry 的锁保护
type mapCache map[reflect.Type]ClassMapper

func newMapCache() mapCache {
	return make(mapCache, 16)
}

func (c mapCache) get(typ reflect.Type) (ClassMapper, bool) {
	m, ok := c[typ]
	return m, ok
}

func (c mapCache) add(typ reflect.Type, m ClassMapper) { c[typ] = m }
func (c mapCache) remove(typ reflect.Type)             { delete(c, typ) }
func (c mapCache) len() int                            { return len(c) }

func (c mapCache) purge() {
	for k := range c {
		delete(c, k)
	}
}

type lruCache struct {
	c *lru.Cache
}

func newLRUCache(size int) (*lruCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &lruCache{c: c}, nil
}

func (l *lruCache) get(typ reflect.Type) (ClassMapper, bool) {
	v, ok := l.c.Get(typ)
	if !ok {
		return nil, false
	}
	return v.(ClassMapper), true
}

func (l *lruCache) add(typ reflect.Type, m ClassMapper) { l.c.Add(typ, m) }
func (l *lruCache) remove(typ reflect.Type)             { l.c.Remove(typ) }
func (l *lruCache) purge()                              { l.c.Purge() }
func (l *lruCache) len() int                            { return l.c.Len() }

// RegisterMapper registers a hand-written mapper for T. build runs under the
// registry lock, so it must not call back into the registry.
func RegisterMapper[T any](r *Registry, build func() *Mapper[T]) {
	r.Register(reflect.TypeOf((*T)(nil)).Elem(), func(reflect.Type) (ClassMapper, error) {
		m := build()
		if err := m.Err(); err != nil {
			return nil, err
		}
		return m, nil
	})
}
