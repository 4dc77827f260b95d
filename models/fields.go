package models

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// 自定义字段中的保留键
const (
	FieldNote          = "note"
	FieldSelectedTypes = "selected_types"
)

// IsReservedField 保留键不能作为自定义列出现
func IsReservedField(key string) bool {
	return key == FieldNote || key == FieldSelectedTypes
}

// Fields 保持插入顺序的 string→string 映射，零值可直接使用
type Fields struct {
	om *orderedmap.OrderedMap[string, string]
}

// NewFields 按 kv 对构造，kv 长度为奇数时忽略最后一个
func NewFields(kv ...string) Fields {
	var f Fields
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i], kv[i+1])
	}
	return f
}

func (f *Fields) ensure() {
	if f.om == nil {
		f.om = orderedmap.New[string, string]()
	}
}

func (f Fields) Len() int {
	if f.om == nil {
		return 0
	}
	return f.om.Len()
}

func (f Fields) Get(key string) (string, bool) {
	if f.om == nil {
		return "", false
	}
	return f.om.Get(key)
}

// Value 不存在时返回空串
func (f Fields) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

func (f Fields) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Set 已存在的键保持原位置
func (f *Fields) Set(key, value string) {
	f.ensure()
	f.om.Set(key, value)
}

func (f *Fields) Delete(key string) bool {
	if f.om == nil {
		return false
	}
	_, ok := f.om.Delete(key)
	return ok
}

// Rename 把 oldKey 的值迁移到 newKey 并保持原位置；newKey 已存在时不做修改
func (f *Fields) Rename(oldKey, newKey string) bool {
	if oldKey == newKey || !f.Has(oldKey) || f.Has(newKey) {
		return false
	}
	next := orderedmap.New[string, string]()
	for pair := f.om.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case oldKey:
			next.Set(newKey, pair.Value)
		default:
			next.Set(pair.Key, pair.Value)
		}
	}
	f.om = next
	return true
}

// Keys 按插入顺序
func (f Fields) Keys() []string {
	keys := make([]string, 0, f.Len())
	f.Range(func(k, _ string) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range 按插入顺序遍历，fn 返回 false 时停止
func (f Fields) Range(fn func(key, value string) bool) {
	if f.om == nil {
		return
	}
	for pair := f.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Map 无序副本，便于比较
func (f Fields) Map() map[string]string {
	m := make(map[string]string, f.Len())
	f.Range(func(k, v string) bool {
		m[k] = v
		return true
	})
	return m
}

func (f Fields) Clone() Fields {
	var out Fields
	f.Range(func(k, v string) bool {
		out.Set(k, v)
		return true
	})
	return out
}

func (f Fields) MarshalJSON() ([]byte, error) {
	if f.Len() == 0 {
		return []byte("{}"), nil
	}
	return f.om.MarshalJSON()
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Fields{}
		return nil
	}
	om := orderedmap.New[string, string]()
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}
	if om.Len() == 0 {
		*f = Fields{}
		return nil
	}
	f.om = om
	return nil
}

var _ json.Marshaler = Fields{}
