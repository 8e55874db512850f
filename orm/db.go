package orm

import (
	"context"
	"database/sql"

	"github.com/coderi421/sqlmapper/orm/dialect"
	"github.com/coderi421/sqlmapper/orm/internal/valuer"
	"github.com/coderi421/sqlmapper/orm/internal/valuer/unsafe"
)

type DBOption func(db *DB)

// DB 是 sql.DB 的装饰器
// 只负责把 Generator 生成的语句交给 database/sql 执行，不管理事务
type DB struct {
	core
	db *sql.DB
}

type core struct {
	cfg        *Configuration
	gen        Generator
	valCreator valuer.Creator // 与DB交互映射的实现
	mdls       []Middleware
	bind       BindStyle
	bindSet    bool
	// hint 通过驱动名推断出来的方言，只在没有指定 Configuration 的时候使用
	hint dialect.Dialect
}

// Open 创建一个 DB 实例，驱动名同时用来推断方言，例如 mysql, postgres, sqlite3
// 推断不出来的时候使用 Configuration 的默认方言
func Open(driver string, dsn string, opts ...DBOption) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if d, err := dialect.ByName(driver); err == nil {
		opts = append([]DBOption{func(db *DB) { db.hint = d }}, opts...)
	}
	return OpenDB(db, opts...)
}

// OpenDB 一般用于测试，或者已经有 sql.DB 的场景
func OpenDB(db *sql.DB, opts ...DBOption) (*DB, error) {
	res := &DB{
		core: core{
			valCreator: unsafe.NewUnsafeValue,
		},
		db: db,
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.cfg == nil {
		var copts []ConfigOption
		if res.hint != nil {
			copts = append(copts, WithDialect(res.hint))
		}
		cfg, err := NewConfiguration(copts...)
		if err != nil {
			return nil, err
		}
		res.cfg = cfg
	}
	res.gen = NewGenerator(res.cfg)
	if !res.bindSet {
		res.bind = defaultBindStyle(res.cfg.Dialect())
	}
	return res, nil
}

// MustOpen 创建 DB，如果失败则会 panic
// 我个人不太喜欢这种
func MustOpen(driver string, dsn string, opts ...DBOption) *DB {
	db, err := Open(driver, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// DBWithConfiguration 共享同一个 Configuration 的 DB 也共享映射缓存
func DBWithConfiguration(cfg *Configuration) DBOption {
	return func(db *DB) {
		db.cfg = cfg
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = mdls
	}
}

// DBUseReflectValuer 默认使用 unsafe 读写字段
func DBUseReflectValuer() DBOption {
	return func(db *DB) {
		db.valCreator = valuer.NewReflectValue
	}
}

// DBWithBindStyle 覆盖方言默认的参数绑定方式
func DBWithBindStyle(b BindStyle) DBOption {
	return func(db *DB) {
		db.bind = b
		db.bindSet = true
	}
}

func (db *DB) Configuration() *Configuration {
	return db.cfg
}

func (db *DB) Generator() Generator {
	return db.gen
}

func (db *DB) Close() error {
	return db.db.Close()
}

// args 按照绑定方式展开参数
func (c core) args(query string, params *Parameters) (string, []any) {
	return c.bind.bind(c.cfg.Dialect().ParameterPrefix(), query, params)
}

// handle 把中间件串起来，最后执行 root
func (c core) handle(ctx context.Context, qc *QueryContext, root Handler) *QueryResult {
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root(ctx, qc)
}

func (db *DB) queryContext(ctx context.Context, query string, params *Parameters) (*sql.Rows, error) {
	q, args := db.args(query, params)
	return db.db.QueryContext(ctx, q, args...)
}

func (db *DB) execContext(ctx context.Context, query string, params *Parameters) (sql.Result, error) {
	q, args := db.args(query, params)
	return db.db.ExecContext(ctx, q, args...)
}
