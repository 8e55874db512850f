package mapper

import (
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/coderi421/sqlmapper/orm/internal/errs"
)

// 我们支持的全部标签上的 key 都放在这里
// 方便用户查找，和我们后期维护
const (
	tagORMName     = "orm"
	tagKeyColumn   = "column"
	tagKeyKey      = "key"
	tagKeyIgnore   = "ignore"
	tagKeyReadOnly = "readonly"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// autoMap 自动映射的约定：
// 1. 按声明顺序遍历所有导出字段，已经显式映射过的跳过
// 2. 列名默认就是字段名
// 3. 没有显式主键的时候推断主键：名字是 Id 的字段优先，否则是第一个以 Id 结尾的字段
func (m *core) autoMap(canMap ...func(f reflect.StructField) bool) {
	if m.fields == nil {
		return
	}
	hasDefinedKey := false
	for _, p := range m.props {
		if p.keyType != NotAKey {
			hasDefinedKey = true
			break
		}
	}

	added := make([]*PropertyMap, 0, len(m.fields))
	for _, f := range m.fields {
		if m.mapped(f.Name) || !allowed(f.StructField, canMap) {
			continue
		}
		tags, err := parseTag(f.Tag)
		if err != nil {
			m.fail(err)
			return
		}
		p := newFieldProperty(f, m.namer)
		if err = applyTags(p, tags); err != nil {
			m.fail(err)
			return
		}
		if p.keyType != NotAKey {
			hasDefinedKey = true
		}
		m.props = append(m.props, p)
		added = append(added, p)
	}

	if hasDefinedKey {
		return
	}
	var keyMap *PropertyMap
	for _, p := range added {
		if p.ignored || p.readOnly {
			continue
		}
		if strings.EqualFold(p.name, "id") {
			keyMap = p
		}
		if keyMap == nil && strings.HasSuffix(strings.ToLower(p.name), "id") {
			keyMap = p
		}
	}
	if keyMap != nil {
		keyMap.Key(keyTypeOf(keyMap.typ))
	}
}

func allowed(f reflect.StructField, canMap []func(f reflect.StructField) bool) bool {
	for _, fn := range canMap {
		if fn != nil && !fn(f) {
			return false
		}
	}
	return true
}

// keyTypeOf uuid 是 Guid，整数是 Identity，其它的都需要调用方自己赋值
func keyTypeOf(typ reflect.Type) KeyType {
	typ = indirect(typ)
	if typ == nil {
		return Assigned
	}
	if typ == uuidType {
		return Guid
	}
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Identity
	default:
		return Assigned
	}
}

// parseTag orm:"column=first_name,key=identity,ignore"
// 没有值的 key 相当于 key=true
func parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag := tag.Get(tagORMName)
	if ormTag == "" {
		// 返回一个空的 map，这样调用者就不需要判断 nil 了
		return map[string]string{}, nil
	}
	pairs := strings.Split(ormTag, ",")
	res := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv := strings.Split(strings.TrimSpace(pair), "=")
		switch len(kv) {
		case 1:
			res[kv[0]] = "true"
		case 2:
			res[kv[0]] = kv[1]
		default:
			return nil, errs.NewErrInvalidTagContent(pair)
		}
	}
	return res, nil
}

var keyTypeNames = map[string]KeyType{
	"identity": Identity,
	"guid":     Guid,
	"assigned": Assigned,
	"trigger":  TriggerIdentity,
}

func applyTags(p *PropertyMap, tags map[string]string) error {
	for k, v := range tags {
		switch k {
		case tagKeyColumn:
			if v == "" || v == "true" {
				return errs.NewErrInvalidTagContent(k + "=" + v)
			}
			p.Column(v)
		case tagKeyKey:
			kt, ok := keyTypeNames[strings.ToLower(v)]
			if !ok {
				return errs.NewErrInvalidTagContent(k + "=" + v)
			}
			p.keyType = kt
		case tagKeyIgnore:
			p.ignored = v == "true"
		case tagKeyReadOnly:
			p.readOnly = v == "true"
		default:
			return errs.NewErrInvalidTagContent(k + "=" + v)
		}
	}
	if p.keyType != NotAKey && (p.ignored || p.readOnly) {
		return errs.NewErrInvalidProperty(p.name, "is ignored or read-only and cannot be made a key field")
	}
	return nil
}
