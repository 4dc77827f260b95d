package models

import (
	"bytes"
	"encoding/json"
)

var requiredDocumentKeys = []string{"id", "title", "templates", "coursePresets", "segments"}

// Marshal 序列化整个项目，两空格缩进
func Marshal(p *Project) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Unmarshal 解析并校验项目文档；缺少必需字段时返回 INVALID_DOCUMENT
func Unmarshal(data []byte) (*Project, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, WrapError(KindInvalidDocument, err, "文档不是合法的 JSON 对象")
	}
	if raw == nil {
		return nil, Errorf(KindInvalidDocument, "文档为空")
	}
	for _, key := range requiredDocumentKeys {
		v, ok := raw[key]
		if !ok || isNull(v) {
			return nil, Errorf(KindInvalidDocument, "缺少字段 %s", key)
		}
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, WrapError(KindInvalidDocument, err, "文档结构不正确")
	}
	if p.ID == "" || p.Title == "" {
		return nil, Errorf(KindInvalidDocument, "id 和 title 不能为空")
	}
	if len(p.Templates) == 0 {
		return nil, Errorf(KindInvalidDocument, "至少需要一个模版")
	}
	if p.CoursePresets == nil {
		p.CoursePresets = []CoursePreset{}
	}
	if p.Segments == nil {
		p.Segments = []Segment{}
	}
	return &p, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
