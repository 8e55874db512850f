package orm

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/coderi421/sqlmapper/orm/dialect"
	"github.com/coderi421/sqlmapper/orm/internal/errs"
	"github.com/coderi421/sqlmapper/orm/internal/valuer"
	"github.com/coderi421/sqlmapper/orm/mapper"
)

// 查询类型，中间件通过 QueryContext.Type 区分
const (
	TypeSelect = "SELECT"
	TypeCount  = "COUNT"
	TypeInsert = "INSERT"
	TypeUpdate = "UPDATE"
	TypeDelete = "DELETE"
)

// idOutParam 触发器生成的主键通过这个输出参数取回
const idOutParam = "IdOutParam"

// Get 按主键查询
// 单一主键直接传值，复合主键传 map[string]any，key 是字段名
// 没有数据的时候返回 ErrNoRows
func Get[T any](ctx context.Context, db *DB, id any) (*T, error) {
	m, err := mapOf[T](db)
	if err != nil {
		return nil, err
	}
	p, err := keyPredicate(m, id)
	if err != nil {
		return nil, err
	}
	params := NewParameters()
	query, err := db.gen.Select(m, p, nil, params)
	if err != nil {
		return nil, err
	}
	res := db.handle(ctx, &QueryContext{Type: TypeSelect, SQL: query, Params: params, Mapper: m}, selectHandler[T](db, true))
	return resultAs[*T](res)
}

// GetList p 为 nil 的时候查询全部
func GetList[T any](ctx context.Context, db *DB, p Predicate, sort ...Sort) ([]*T, error) {
	m, err := mapOf[T](db)
	if err != nil {
		return nil, err
	}
	params := NewParameters()
	query, err := db.gen.Select(m, p, sort, params)
	if err != nil {
		return nil, err
	}
	return list[T](ctx, db, &QueryContext{Type: TypeSelect, SQL: query, Params: params, Mapper: m})
}

// GetPage 分页查询，page 的起点由方言决定
func GetPage[T any](ctx context.Context, db *DB, p Predicate, sort []Sort, page, resultsPerPage int) ([]*T, error) {
	m, err := mapOf[T](db)
	if err != nil {
		return nil, err
	}
	params := NewParameters()
	query, err := db.gen.SelectPaged(m, p, sort, page, resultsPerPage, params)
	if err != nil {
		return nil, err
	}
	return list[T](ctx, db, &QueryContext{Type: TypeSelect, SQL: query, Params: params, Mapper: m})
}

// GetSet 跳过 firstResult 行，最多返回 maxResults 行
func GetSet[T any](ctx context.Context, db *DB, p Predicate, sort []Sort, firstResult, maxResults int) ([]*T, error) {
	m, err := mapOf[T](db)
	if err != nil {
		return nil, err
	}
	params := NewParameters()
	query, err := db.gen.SelectSet(m, p, sort, firstResult, maxResults, params)
	if err != nil {
		return nil, err
	}
	return list[T](ctx, db, &QueryContext{Type: TypeSelect, SQL: query, Params: params, Mapper: m})
}

func Count[T any](ctx context.Context, db *DB, p Predicate) (int64, error) {
	m, err := mapOf[T](db)
	if err != nil {
		return 0, err
	}
	params := NewParameters()
	query, err := db.gen.Count(m, p, params)
	if err != nil {
		return 0, err
	}
	res := db.handle(ctx, &QueryContext{Type: TypeCount, SQL: query, Params: params, Mapper: m},
		func(ctx context.Context, qc *QueryContext) *QueryResult {
			q, args := db.args(qc.SQL, qc.Params)
			var cnt int64
			err := db.db.QueryRowContext(ctx, q, args...).Scan(&cnt)
			return &QueryResult{Result: cnt, Err: err}
		})
	return resultAs[int64](res)
}

// Insert 插入一个实体
// Guid 主键为零值的时候先生成，自增主键和触发器主键在插入之后写回实体
func Insert[T any](ctx context.Context, db *DB, entity *T) error {
	if entity == nil {
		return errs.NewErrArgumentNil("entity")
	}
	m, err := mapOf[T](db)
	if err != nil {
		return err
	}
	query, err := db.gen.Insert(m)
	if err != nil {
		return err
	}
	return db.insert(ctx, m, query, entity)
}

// InsertAll 批量插入，INSERT 语句只生成一次，每个实体各执行一次
// 遇到第一个错误就返回，之前插入的实体不会回滚
func InsertAll[T any](ctx context.Context, db *DB, entities []*T) error {
	for i, e := range entities {
		if e == nil {
			return errs.NewErrArgumentNil(fmt.Sprintf("entities[%d]", i))
		}
	}
	if len(entities) == 0 {
		return nil
	}
	m, err := mapOf[T](db)
	if err != nil {
		return err
	}
	query, err := db.gen.Insert(m)
	if err != nil {
		return err
	}
	for _, e := range entities {
		if err = db.insert(ctx, m, query, e); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) insert(ctx context.Context, m mapper.ClassMapper, query string, entity any) error {
	val := db.valCreator(entity, m)
	props := m.Properties()
	if err := db.fillGuidKeys(val, props); err != nil {
		return err
	}
	params, err := db.bindProperties(val, lo.Filter(props, func(p mapper.PropertyMap, _ int) bool {
		return insertable(p)
	}))
	if err != nil {
		return err
	}

	prefix := string(db.cfg.Dialect().ParameterPrefix())
	trigger, hasTrigger := lo.Find(props, func(p mapper.PropertyMap) bool {
		return p.KeyType() == mapper.TriggerIdentity
	})
	var out reflect.Value
	if hasTrigger {
		out = reflect.New(trigger.Type())
		if err = params.Add(prefix+idOutParam, sql.Out{Dest: out.Interface()}); err != nil {
			return err
		}
	}
	identity, hasIdentity := lo.Find(props, func(p mapper.PropertyMap) bool {
		return p.KeyType() == mapper.Identity
	})

	qc := &QueryContext{Type: TypeInsert, SQL: query, Params: params, Mapper: m}
	res := db.handle(ctx, qc, func(ctx context.Context, qc *QueryContext) *QueryResult {
		var r Result
		if hasIdentity {
			r = db.insertIdentity(ctx, qc)
		} else {
			sr, err := db.execContext(ctx, qc.SQL, qc.Params)
			r = Result{res: sr, err: err}
		}
		return &QueryResult{Result: r, Err: r.err}
	})
	r, err := resultAs[Result](res)
	if err != nil {
		return err
	}

	switch {
	case hasIdentity:
		id, err := r.LastInsertId()
		if err != nil {
			return err
		}
		return val.SetField(identity.Name(), id)
	case hasTrigger:
		return val.SetField(trigger.Name(), out.Elem().Interface())
	}
	return nil
}

// Update 按主键更新实体，返回是否有行被修改
// ignoreAllKeyProperties 为 true 的时候所有主键都不会出现在 SET 中
func Update[T any](ctx context.Context, db *DB, entity *T, ignoreAllKeyProperties bool) (bool, error) {
	if entity == nil {
		return false, errs.NewErrArgumentNil("entity")
	}
	m, err := mapOf[T](db)
	if err != nil {
		return false, err
	}
	val := db.valCreator(entity, m)
	p, err := entityKeyPredicate(m, val)
	if err != nil {
		return false, err
	}
	params := NewParameters()
	query, err := db.gen.Update(m, p, params, ignoreAllKeyProperties)
	if err != nil {
		return false, err
	}
	prefix := string(db.cfg.Dialect().ParameterPrefix())
	for _, pm := range m.Properties() {
		if !updatable(pm, ignoreAllKeyProperties) {
			continue
		}
		v, err := val.Field(pm.Name())
		if err != nil {
			return false, err
		}
		if err = params.Add(prefix+pm.Name(), v); err != nil {
			return false, err
		}
	}
	return db.exec(ctx, &QueryContext{Type: TypeUpdate, SQL: query, Params: params, Mapper: m})
}

// Delete 按主键删除实体
func Delete[T any](ctx context.Context, db *DB, entity *T) (bool, error) {
	if entity == nil {
		return false, errs.NewErrArgumentNil("entity")
	}
	m, err := mapOf[T](db)
	if err != nil {
		return false, err
	}
	p, err := entityKeyPredicate(m, db.valCreator(entity, m))
	if err != nil {
		return false, err
	}
	return deleteWhere(ctx, db, m, p)
}

// DeleteWhere 按条件删除，p 不能为 nil
func DeleteWhere[T any](ctx context.Context, db *DB, p Predicate) (bool, error) {
	m, err := mapOf[T](db)
	if err != nil {
		return false, err
	}
	return deleteWhere(ctx, db, m, p)
}

func deleteWhere(ctx context.Context, db *DB, m mapper.ClassMapper, p Predicate) (bool, error) {
	params := NewParameters()
	query, err := db.gen.Delete(m, p, params)
	if err != nil {
		return false, err
	}
	return db.exec(ctx, &QueryContext{Type: TypeDelete, SQL: query, Params: params, Mapper: m})
}

func mapOf[T any](db *DB) (mapper.ClassMapper, error) {
	m, err := MapOf[T](db.cfg)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NewErrMapNotFound(typeOf[T]())
	}
	return m, nil
}

func list[T any](ctx context.Context, db *DB, qc *QueryContext) ([]*T, error) {
	return resultAs[[]*T](db.handle(ctx, qc, selectHandler[T](db, false)))
}

// selectHandler single 为 true 的时候只读取第一行
func selectHandler[T any](db *DB, single bool) Handler {
	return func(ctx context.Context, qc *QueryContext) *QueryResult {
		rows, err := db.queryContext(ctx, qc.SQL, qc.Params)
		if err != nil {
			return &QueryResult{Err: err}
		}
		defer func() { _ = rows.Close() }()

		res := make([]*T, 0, 8)
		for rows.Next() {
			t := new(T)
			if err = db.valCreator(t, qc.Mapper).SetColumns(rows); err != nil {
				return &QueryResult{Err: err}
			}
			if single {
				return &QueryResult{Result: t}
			}
			res = append(res, t)
		}
		if err = rows.Err(); err != nil {
			return &QueryResult{Err: err}
		}
		if single {
			return &QueryResult{Err: errs.ErrNoRows}
		}
		return &QueryResult{Result: res}
	}
}

// exec 返回是否有行被影响
func (db *DB) exec(ctx context.Context, qc *QueryContext) (bool, error) {
	res := db.handle(ctx, qc, func(ctx context.Context, qc *QueryContext) *QueryResult {
		sr, err := db.execContext(ctx, qc.SQL, qc.Params)
		return &QueryResult{Result: Result{res: sr, err: err}, Err: err}
	})
	r, err := resultAs[Result](res)
	if err != nil {
		return false, err
	}
	affected, err := r.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// insertIdentity 插入并取回自增主键
func (db *DB) insertIdentity(ctx context.Context, qc *QueryContext) Result {
	d := db.cfg.Dialect()
	if d.Name() == dialect.SQLServer.Name() {
		// SCOPE_IDENTITY 只在同一个批次里面有效
		identitySQL, err := db.gen.IdentitySQL(qc.Mapper)
		if err != nil {
			return Result{err: err}
		}
		var id int64
		q, args := db.args(qc.SQL+d.BatchSeparator()+identitySQL, qc.Params)
		if err = db.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return Result{err: err}
		}
		return Result{id: &id}
	}

	// LAST_INSERT_ID 之类的函数是连接级别的，两条语句必须用同一个连接
	conn, err := db.db.Conn(ctx)
	if err != nil {
		return Result{err: err}
	}
	defer func() { _ = conn.Close() }()

	q, args := db.args(qc.SQL, qc.Params)
	res, err := conn.ExecContext(ctx, q, args...)
	if err != nil {
		return Result{err: err}
	}
	if _, err = res.LastInsertId(); err == nil {
		return Result{res: res}
	}
	identitySQL, err := db.gen.IdentitySQL(qc.Mapper)
	if err != nil {
		return Result{res: res, err: err}
	}
	var id int64
	if err = conn.QueryRowContext(ctx, identitySQL).Scan(&id); err != nil {
		return Result{res: res, err: err}
	}
	return Result{res: res, id: &id}
}

// fillGuidKeys Guid 主键是零值的时候生成新的值
func (db *DB) fillGuidKeys(val valuer.Value, props []mapper.PropertyMap) error {
	for _, p := range props {
		if p.KeyType() != mapper.Guid {
			continue
		}
		cur, err := val.Field(p.Name())
		if err != nil {
			return err
		}
		switch v := cur.(type) {
		case uuid.UUID:
			if v == uuid.Nil {
				err = val.SetField(p.Name(), db.cfg.GetNextGuid())
			}
		case string:
			if v == "" {
				err = val.SetField(p.Name(), db.cfg.GetNextGuid().String())
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// bindProperties 参数名是 前缀 + 字段名，和 Generator.Insert 生成的占位符一致
func (db *DB) bindProperties(val valuer.Value, props []mapper.PropertyMap) (*Parameters, error) {
	prefix := string(db.cfg.Dialect().ParameterPrefix())
	params := NewParameters()
	for _, p := range props {
		v, err := val.Field(p.Name())
		if err != nil {
			return nil, err
		}
		if err = params.Add(prefix+p.Name(), v); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func keyProperties(m mapper.ClassMapper) []mapper.PropertyMap {
	return lo.Filter(m.Properties(), func(p mapper.PropertyMap, _ int) bool {
		return p.KeyType() != mapper.NotAKey
	})
}

// keyPredicate 主键条件，复合主键用 AND 连接
func keyPredicate(m mapper.ClassMapper, id any) (Predicate, error) {
	keys := keyProperties(m)
	if len(keys) == 0 {
		return nil, errs.ErrNoKeyColumns
	}
	values, isMap := id.(map[string]any)
	if !isMap && len(keys) > 1 {
		return nil, errs.NewErrArgument("id", "composite keys require a map[string]any of key values")
	}
	ps := make([]Predicate, 0, len(keys))
	for _, k := range keys {
		v := id
		if isMap {
			var ok bool
			if v, ok = values[k.Name()]; !ok {
				return nil, errs.NewErrMissingKeyValue(k.Name())
			}
		}
		ps = append(ps, &FieldPredicate{
			entity:       m.EntityType(),
			PropertyName: k.Name(),
			Operator:     Eq,
			Value:        v,
		})
	}
	if len(ps) == 1 {
		return ps[0], nil
	}
	return AndGroup(ps...), nil
}

func entityKeyPredicate(m mapper.ClassMapper, val valuer.Value) (Predicate, error) {
	keys := keyProperties(m)
	if len(keys) == 0 {
		return nil, errs.ErrNoKeyColumns
	}
	values := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := val.Field(k.Name())
		if err != nil {
			return nil, err
		}
		values[k.Name()] = v
	}
	return keyPredicate(m, values)
}

func resultAs[R any](res *QueryResult) (R, error) {
	var zero R
	if res.Err != nil {
		return zero, res.Err
	}
	r, ok := res.Result.(R)
	if !ok {
		return zero, errs.NewErrUnexpectedResult(res.Result)
	}
	return r, nil
}
