package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// extension 保存文档中未识别的字段，保证导入导出往返不丢数据
type extension map[string]json.RawMessage

func (e extension) clone() extension {
	if len(e) == 0 {
		return nil
	}
	out := make(extension, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

var knownKeyCache sync.Map // reflect.Type -> map[string]struct{}

// jsonKeys 读取结构体 json tag 中声明的字段名
func jsonKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeyCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		keys[name] = struct{}{}
	}
	knownKeyCache.Store(t, keys)
	return keys
}

// decodeObject 解码到 v（指向无方法的别名类型），返回未识别字段
func decodeObject(data []byte, v any) (extension, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	known := jsonKeys(reflect.TypeOf(v).Elem())
	for k, val := range raw {
		if _, ok := known[k]; ok {
			delete(raw, k)
			continue
		}
		// 统一为紧凑格式，重复导入导出时保持一致
		var buf bytes.Buffer
		if err := json.Compact(&buf, val); err == nil {
			raw[k] = buf.Bytes()
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return extension(raw), nil
}

// encodeObject 编码 v 并合并未识别字段；已知字段优先
func encodeObject(v any, ext extension) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(ext) == 0 {
		return b, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, raw := range ext {
		if _, exists := merged[k]; !exists {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}
