package orm

import (
	"database/sql"
	"errors"
)

var errNoRowsAffected = errors.New("orm: 批量语句不返回影响的行数")

type Result struct {
	err error
	res sql.Result
	// id 通过方言的 IdentitySQL 取回的主键，驱动不支持 LastInsertId 的时候使用
	id *int64
}

// LastInsertId 重新 database sql 的 Result 方法 做一层拦截
func (r Result) LastInsertId() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.id != nil {
		return *r.id, nil
	}
	return r.res.LastInsertId()
}

func (r Result) RowsAffected() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.res == nil {
		return 0, errNoRowsAffected
	}
	return r.res.RowsAffected()
}

func (r Result) Err() error {
	return r.err
}
