package orm

import "github.com/coderi421/sqlmapper/orm/internal/errs"

// 将内部的 sentinel error 暴露出去
var (
	// ErrNoRows 代表没有找到数据
	ErrNoRows = errs.ErrNoRows
	// ErrArgument 调用方式错误，例如缺少参数，或者没有可以插入的列
	ErrArgument = errs.ErrArgument
	// ErrMapping 实体或者字段没有映射
	ErrMapping = errs.ErrMapping
	// ErrMultipleTriggerIdentity 只支持一个 TriggerIdentity 主键
	ErrMultipleTriggerIdentity = errs.ErrMultipleTriggerIdentity
	// ErrNoKeyColumns 实体没有主键，不能按实体更新或者删除
	ErrNoKeyColumns = errs.ErrNoKeyColumns
)

type (
	// ArgumentError 带有出错的参数名
	ArgumentError = errs.ArgumentError
	// MappingError 带有出错的类型名和字段名
	MappingError = errs.MappingError
)
